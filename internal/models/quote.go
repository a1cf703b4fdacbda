package models

// Quote is a single catalog entry
type Quote struct {
	ID     string `json:"id" yaml:"id"`
	Text   string `json:"text" yaml:"text"`
	Author string `json:"author,omitempty" yaml:"author,omitempty"`
}

// Display renders the quote with its attribution, if any.
func (q Quote) Display() string {
	if q.Author == "" {
		return q.Text
	}
	return q.Text + " - " + q.Author
}
