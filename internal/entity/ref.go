package entity

// Ref points at another record by id. Name and Email are labels resolved
// when the owning record is read; they are never written back.
type Ref struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

func NewRef(id string) *Ref {
	if id == "" {
		return nil
	}
	return &Ref{ID: id}
}

func (r *Ref) RefID() string {
	if r == nil {
		return ""
	}
	return r.ID
}
