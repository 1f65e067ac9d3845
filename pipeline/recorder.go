package pipeline

// Recorder is a Backend that keeps every submitted command. It stands in for
// a device when rendering must be inspected rather than drawn.
type Recorder struct {
	Submissions [][]Command
}

func (r *Recorder) Execute(cmds []Command) error {
	r.Submissions = append(r.Submissions, append([]Command(nil), cmds...))
	return nil
}

// Commands returns all recorded commands in submission order.
func (r *Recorder) Commands() []Command {
	var all []Command
	for _, s := range r.Submissions {
		all = append(all, s...)
	}
	return all
}

// Draws returns the recorded procedural draws.
func (r *Recorder) Draws() []DrawProcedural {
	var draws []DrawProcedural
	for _, c := range r.Commands() {
		if d, ok := c.(DrawProcedural); ok {
			draws = append(draws, d)
		}
	}
	return draws
}

// Globals returns the last value written to each matrix and vector global.
func (r *Recorder) Globals() (map[PropertyID]SetGlobalMatrix, map[PropertyID]SetGlobalVector) {
	mats := make(map[PropertyID]SetGlobalMatrix)
	vecs := make(map[PropertyID]SetGlobalVector)
	for _, c := range r.Commands() {
		switch c := c.(type) {
		case SetGlobalMatrix:
			mats[c.ID] = c
		case SetGlobalVector:
			vecs[c.ID] = c
		}
	}
	return mats, vecs
}

func (r *Recorder) Reset() {
	r.Submissions = nil
}
