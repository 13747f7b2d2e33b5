package model

// Entity is implemented by every owner-scoped resource.
type Entity interface {
    EntityID() string
}

func (f *Folder) EntityID() string { return f.ID }
func (t *Tag) EntityID() string    { return t.ID }
func (n *Note) EntityID() string   { return n.ID }
