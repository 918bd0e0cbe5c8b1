package render

// ModalState is a snapshot of the shared modal.
type ModalState struct {
	Open    bool   `json:"open"`
	Locator string `json:"locator,omitempty"`
	Title   string `json:"title,omitempty"`
}

// Modal is the single overlay used for every enlarged image or frame.
// Opening it replaces whatever it showed before.
type Modal struct {
	state ModalState
}

// NewModal creates a closed modal.
func NewModal() *Modal {
	return &Modal{}
}

// Open shows locator with the given title.
func (m *Modal) Open(locator, title string) {
	m.state = ModalState{Open: true, Locator: locator, Title: title}
}

// Close hides the modal and drops its content.
func (m *Modal) Close() {
	m.state = ModalState{}
}

// State returns the current modal state.
func (m *Modal) State() ModalState {
	return m.state
}
