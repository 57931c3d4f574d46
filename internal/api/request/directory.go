package request

// EntryAttributes is the wire shape for directory attributes: each value is
// either a single string or a list of strings. Handlers convert it into the
// directory package's tagged representation.
type EntryAttributes map[string]any

type AddEntry struct {
	DN         string          `json:"dn" validate:"required"`
	Attributes EntryAttributes `json:"attributes" validate:"required"`
}

type ModifyEntry struct {
	Changes EntryAttributes `json:"changes" validate:"required"`
}

type DirectorySearch struct {
	BaseDN     string   `json:"base_dn" validate:"required"`
	Filter     string   `json:"filter"`
	Attributes []string `json:"attributes"`
}

type DirectoryBackup struct {
	Path string `json:"path" validate:"required"`
}
