package interview

// Prompt is one interview question.
type Prompt string

// DefaultFeedback is attached to every answer. No analysis is performed.
const DefaultFeedback = "Mock feedback: Your answer is clear. Try to include more personal detail."

// DefaultPrompts is the student visa question set.
var DefaultPrompts = []Prompt{
	"Why do you want to study in this country?",
	"What university are you going to and what program?",
	"How will you pay for your studies and living expenses?",
	"What do you plan to do after graduation?",
	"Do you have any family in the destination country?",
}

// Sequencer walks a fixed prompt list and wraps after the last one.
type Sequencer struct {
	prompts []Prompt
	cursor  int
}

// NewSequencer copies prompts; the list must not be empty.
func NewSequencer(prompts []Prompt) (*Sequencer, error) {
	if len(prompts) == 0 {
		return nil, ErrNoPrompts
	}

	list := make([]Prompt, len(prompts))
	copy(list, prompts)

	return &Sequencer{prompts: list}, nil
}

// Current returns the prompt at the cursor.
func (s *Sequencer) Current() Prompt {
	return s.prompts[s.cursor]
}

// Advance moves to the next prompt, back to the first after the last.
func (s *Sequencer) Advance() {
	if s.cursor < len(s.prompts)-1 {
		s.cursor++
		return
	}
	s.cursor = 0
}

func (s *Sequencer) Cursor() int {
	return s.cursor
}

func (s *Sequencer) Len() int {
	return len(s.prompts)
}

// Prompts returns a copy of the prompt list.
func (s *Sequencer) Prompts() []Prompt {
	list := make([]Prompt, len(s.prompts))
	copy(list, s.prompts)
	return list
}
