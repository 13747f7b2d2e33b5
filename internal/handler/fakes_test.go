package handler_test

import (
    "context"
    "sort"
    "strings"
    "sync"
    "time"

    "github.com/google/uuid"

    "github.com/iliyamo/noteful-api/internal/model"
    "github.com/iliyamo/noteful-api/internal/queue"
    "github.com/iliyamo/noteful-api/internal/repository"
)

// store is an in-memory stand-in for the MySQL repositories.  It keeps the
// same owner scoping, uniqueness and cascade rules.
type store struct {
    mu      sync.Mutex
    users   map[string]model.User
    folders map[string]model.Folder
    tags    map[string]model.Tag
    notes   map[string]model.Note
    tagErr  error
}

func newStore() *store {
    return &store{
        users:   map[string]model.User{},
        folders: map[string]model.Folder{},
        tags:    map[string]model.Tag{},
        notes:   map[string]model.Note{},
    }
}

// ----- users -----

type userStore struct{ *store }

func (s userStore) Create(_ context.Context, fullname, username, hash string) (*model.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, u := range s.users {
        if u.Username == username {
            return nil, repository.ErrUsernameExists
        }
    }
    u := model.User{ID: uuid.NewString(), Fullname: fullname, Username: username, PasswordHash: hash, CreatedAt: time.Now()}
    s.users[u.ID] = u
    return &u, nil
}

func (s userStore) UsernameTaken(_ context.Context, username, exceptID string) (bool, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, u := range s.users {
        if u.Username == username && u.ID != exceptID {
            return true, nil
        }
    }
    return false, nil
}

func (s userStore) GetByUsername(_ context.Context, username string) (*model.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    for _, u := range s.users {
        if u.Username == username {
            return &u, nil
        }
    }
    return nil, repository.ErrNotFound
}

func (s userStore) GetByID(_ context.Context, id string) (*model.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    u, ok := s.users[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    return &u, nil
}

func (s userStore) Update(_ context.Context, u *model.User) (*model.User, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    s.users[u.ID] = *u
    out := *u
    return &out, nil
}

// ----- folders -----

type folderRepo struct{ *store }

func (r folderRepo) List(_ context.Context, owner, term string) ([]*model.Folder, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    out := []*model.Folder{}
    for _, f := range r.folders {
        if f.UserID == owner && contains(f.Name, term) {
            f := f
            out = append(out, &f)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
    return out, nil
}

func (r folderRepo) Get(_ context.Context, owner, id string) (*model.Folder, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    f, ok := r.folders[id]
    if !ok || f.UserID != owner {
        return nil, repository.ErrNotFound
    }
    return &f, nil
}

func (r folderRepo) Create(_ context.Context, owner string, in model.FolderFields) (*model.Folder, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    for _, f := range r.folders {
        if f.UserID == owner && f.Name == *in.Name {
            return nil, repository.ErrDuplicate
        }
    }
    f := model.Folder{ID: uuid.NewString(), Name: *in.Name, UserID: owner, CreatedAt: time.Now()}
    r.folders[f.ID] = f
    return &f, nil
}

func (r folderRepo) Update(_ context.Context, owner, id string, in model.FolderFields) (*model.Folder, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    f, ok := r.folders[id]
    if !ok || f.UserID != owner {
        return nil, repository.ErrNotFound
    }
    for _, o := range r.folders {
        if o.UserID == owner && o.ID != id && o.Name == *in.Name {
            return nil, repository.ErrDuplicate
        }
    }
    f.Name = *in.Name
    r.folders[id] = f
    return &f, nil
}

func (r folderRepo) Delete(_ context.Context, owner, id string) (int64, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    f, ok := r.folders[id]
    if !ok || f.UserID != owner {
        return 0, repository.ErrNotFound
    }
    var n int64
    for nid, note := range r.notes {
        if note.UserID == owner && note.FolderID != nil && *note.FolderID == id {
            note.FolderID = nil
            r.notes[nid] = note
            n++
        }
    }
    delete(r.folders, id)
    return n, nil
}

// ----- tags -----

type tagRepo struct{ *store }

func (r tagRepo) List(_ context.Context, owner, term string) ([]*model.Tag, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    out := []*model.Tag{}
    for _, t := range r.tags {
        if t.UserID == owner && contains(t.Name, term) {
            t := t
            out = append(out, &t)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
    return out, nil
}

func (r tagRepo) Get(_ context.Context, owner, id string) (*model.Tag, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    t, ok := r.tags[id]
    if !ok || t.UserID != owner {
        return nil, repository.ErrNotFound
    }
    return &t, nil
}

func (r tagRepo) Create(_ context.Context, owner string, in model.TagFields) (*model.Tag, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    for _, t := range r.tags {
        if t.UserID == owner && t.Name == *in.Name {
            return nil, repository.ErrDuplicate
        }
    }
    t := model.Tag{ID: uuid.NewString(), Name: *in.Name, UserID: owner, CreatedAt: time.Now()}
    r.tags[t.ID] = t
    return &t, nil
}

func (r tagRepo) Update(_ context.Context, owner, id string, in model.TagFields) (*model.Tag, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    t, ok := r.tags[id]
    if !ok || t.UserID != owner {
        return nil, repository.ErrNotFound
    }
    for _, o := range r.tags {
        if o.UserID == owner && o.ID != id && o.Name == *in.Name {
            return nil, repository.ErrDuplicate
        }
    }
    t.Name = *in.Name
    r.tags[id] = t
    return &t, nil
}

func (r tagRepo) Delete(_ context.Context, owner, id string) (int64, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    t, ok := r.tags[id]
    if !ok || t.UserID != owner {
        return 0, repository.ErrNotFound
    }
    if r.tagErr != nil {
        return 0, r.tagErr
    }
    var n int64
    for nid, note := range r.notes {
        kept := note.Tags[:0:0]
        for _, tid := range note.Tags {
            if tid != id {
                kept = append(kept, tid)
            }
        }
        if len(kept) != len(note.Tags) {
            note.Tags = kept
            r.notes[nid] = note
            n++
        }
    }
    delete(r.tags, id)
    return n, nil
}

// ----- notes -----

type noteRepo struct{ *store }

func (r noteRepo) List(_ context.Context, owner, term string) ([]*model.Note, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    out := []*model.Note{}
    for _, n := range r.notes {
        if n.UserID == owner && (contains(n.Title, term) || contains(n.Content, term)) {
            n := n
            out = append(out, &n)
        }
    }
    sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
    return out, nil
}

func (r noteRepo) Get(_ context.Context, owner, id string) (*model.Note, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    n, ok := r.notes[id]
    if !ok || n.UserID != owner {
        return nil, repository.ErrNotFound
    }
    return &n, nil
}

func (r noteRepo) checkRefs(owner string, folderID *string, tags *[]string) error {
    if folderID != nil {
        if f, ok := r.folders[*folderID]; !ok || f.UserID != owner {
            return &repository.ReferenceError{Field: "folderId"}
        }
    }
    if tags != nil {
        for _, id := range *tags {
            if t, ok := r.tags[id]; !ok || t.UserID != owner {
                return &repository.ReferenceError{Field: "tags"}
            }
        }
    }
    return nil
}

func (r noteRepo) Create(_ context.Context, owner string, in model.NoteFields) (*model.Note, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    if err := r.checkRefs(owner, in.FolderID, in.Tags); err != nil {
        return nil, err
    }
    n := model.Note{ID: uuid.NewString(), Title: *in.Title, FolderID: in.FolderID, Tags: []string{}, UserID: owner, CreatedAt: time.Now()}
    if in.Content != nil {
        n.Content = *in.Content
    }
    if in.Tags != nil {
        n.Tags = append(n.Tags, *in.Tags...)
    }
    r.notes[n.ID] = n
    return &n, nil
}

func (r noteRepo) Update(_ context.Context, owner, id string, in model.NoteFields) (*model.Note, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    n, ok := r.notes[id]
    if !ok || n.UserID != owner {
        return nil, repository.ErrNotFound
    }
    if err := r.checkRefs(owner, in.FolderID, in.Tags); err != nil {
        return nil, err
    }
    if in.Title != nil {
        n.Title = *in.Title
    }
    if in.Content != nil {
        n.Content = *in.Content
    }
    if in.ClearFolder {
        n.FolderID = nil
    } else if in.FolderID != nil {
        n.FolderID = in.FolderID
    }
    if in.Tags != nil {
        n.Tags = append([]string{}, *in.Tags...)
    }
    r.notes[id] = n
    return &n, nil
}

func (r noteRepo) Delete(_ context.Context, owner, id string) (int64, error) {
    r.mu.Lock()
    defer r.mu.Unlock()
    n, ok := r.notes[id]
    if !ok || n.UserID != owner {
        return 0, repository.ErrNotFound
    }
    delete(r.notes, id)
    return 0, nil
}

func contains(s, term string) bool {
    return strings.Contains(strings.ToLower(s), strings.ToLower(term))
}

// recorder captures published events.
type recorder struct {
    mu     sync.Mutex
    events []queue.ActivityEvent
}

func (r *recorder) Publish(_ context.Context, ev queue.ActivityEvent) {
    r.mu.Lock()
    defer r.mu.Unlock()
    r.events = append(r.events, ev)
}

func (r *recorder) all() []queue.ActivityEvent {
    r.mu.Lock()
    defer r.mu.Unlock()
    return append([]queue.ActivityEvent(nil), r.events...)
}
