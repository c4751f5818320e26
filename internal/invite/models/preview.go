package models

// ListPreview is a display-ready slice of a long email list.
type ListPreview struct {
	Shown  []string `json:"shown"`
	Hidden int      `json:"hidden"`
	Total  int      `json:"total"`
}

// Preview truncates list to TruncatedDisplayThreshold entries unless expanded.
// Hidden is the N in "Show N more".
func Preview(list []string, expanded bool) ListPreview {
	total := len(list)
	if expanded || total <= TruncatedDisplayThreshold {
		return ListPreview{Shown: cloneOrEmpty(list), Total: total}
	}
	return ListPreview{
		Shown:  cloneOrEmpty(list[:TruncatedDisplayThreshold]),
		Hidden: total - TruncatedDisplayThreshold,
		Total:  total,
	}
}
