package interview

// Draft is the answer being composed for the current prompt.
type Draft struct {
	Text  string
	Audio *Blob
}

// Submittable is the submit precondition: some text, or any audio blob.
// A zero-length blob still counts as present.
func (d Draft) Submittable() bool {
	return d.Text != "" || d.Audio != nil
}
