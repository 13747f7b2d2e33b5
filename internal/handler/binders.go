package handler

import (
    "net/http"

    "github.com/iliyamo/noteful-api/internal/model"
    "github.com/iliyamo/noteful-api/internal/validator"
)

// Column limits: VARCHAR(255) counts characters, TEXT counts bytes.
const (
    maxNameLen    = 255
    maxContentLen = 65535
)

var nameRules = validator.Rules{
    Code:     http.StatusBadRequest,
    Required: []string{"name"},
    Strings:  []string{"name"},
    NonEmpty: []string{"name"},
    Sized:    []validator.Size{{Field: "name", Max: maxNameLen}},
}

// bindName validates the single writable field of folders and tags.  The
// name is required on update as well, and stored trimmed.
func bindName(b validator.Body) (*string, error) {
    if err := b.Check(nameRules); err != nil {
        return nil, err
    }
    return b.Trimmed("name"), nil
}

// BindFolder is the Binder for folders.
func BindFolder(b validator.Body, _ bool) (model.FolderFields, error) {
    name, err := bindName(b)
    return model.FolderFields{Name: name}, err
}

// BindTag is the Binder for tags.
func BindTag(b validator.Body, _ bool) (model.TagFields, error) {
    name, err := bindName(b)
    return model.TagFields{Name: name}, err
}

var noteRules = validator.Rules{
    Code:     http.StatusBadRequest,
    Strings:  []string{"title", "content"},
    Nullable: []string{"content", "folderId"},
    NonEmpty: []string{"title"},
    Sized:    []validator.Size{{Field: "title", Max: maxNameLen}, {Field: "content", MaxBytes: maxContentLen}},
    IDs:      []string{"folderId"},
    IDLists:  []string{"tags"},
}

// BindNote is the Binder for notes.  Title is required on create and may
// not be blanked on update.  A null or empty folderId unfiles the note; a
// null tags list clears its tags.
func BindNote(b validator.Body, create bool) (model.NoteFields, error) {
    if s, ok := b["folderId"].(string); ok && s == "" {
        b["folderId"] = nil
    }
    if b.IsNull("tags") {
        b["tags"] = []any{}
    }
    rules := noteRules
    if create {
        rules.Required = []string{"title"}
    }
    if err := b.Check(rules); err != nil {
        return model.NoteFields{}, err
    }

    f := model.NoteFields{
        Title:    b.Trimmed("title"),
        Content:  b.String("content"),
        FolderID: b.String("folderId"),
        Tags:     b.StringList("tags"),
    }
    if b.IsNull("content") {
        empty := ""
        f.Content = &empty
    }
    f.ClearFolder = b.IsNull("folderId")
    return f, nil
}
