package pipeline

import "sync"

// PropertyID identifies a shader property by name. IDs are process-wide
// and stable for the lifetime of the process.
type PropertyID int32

var properties = struct {
	sync.Mutex
	ids   map[string]PropertyID
	names []string
}{ids: make(map[string]PropertyID)}

// PropertyToID interns name and returns its ID. Callers resolve IDs once,
// typically in a package-level var block, and reuse them every frame.
func PropertyToID(name string) PropertyID {
	properties.Lock()
	defer properties.Unlock()
	if id, ok := properties.ids[name]; ok {
		return id
	}
	id := PropertyID(len(properties.names))
	properties.ids[name] = id
	properties.names = append(properties.names, name)
	return id
}

// PropertyName returns the name id was created from, or "" for unknown ids.
func PropertyName(id PropertyID) string {
	properties.Lock()
	defer properties.Unlock()
	if id < 0 || int(id) >= len(properties.names) {
		return ""
	}
	return properties.names[id]
}

func (id PropertyID) String() string {
	return PropertyName(id)
}

// Well-known globals the host sets before any pass runs.
var (
	ScreenParamsID        = PropertyToID("_ScreenParams")
	TimeID                = PropertyToID("_Time")
	MatrixVID             = PropertyToID("_MatrixV")
	MatrixPID             = PropertyToID("_MatrixP")
	MatrixVPID            = PropertyToID("_MatrixVP")
	MatrixInvVPID         = PropertyToID("_MatrixInvVP")
	WorldSpaceCameraPosID = PropertyToID("_WorldSpaceCameraPos")
)
