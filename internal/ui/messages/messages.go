package messages

import (
	"github.com/fragmede/habrscore/internal/api"
	"github.com/fragmede/habrscore/internal/dom"
	"github.com/fragmede/habrscore/internal/visibility"
)

// Data messages.
type (
	// PageLoadedMsg carries a fetched page and its parsed document.
	PageLoadedMsg struct {
		Page  *api.Page
		Doc   *dom.Document
		Err   error
		Retry bool
	}

	// RetryTickMsg fires while the comment section is still loading.
	RetryTickMsg struct{}

	ThresholdChangedMsg struct {
		Threshold visibility.Threshold
	}

	StatusMsg struct {
		Text    string
		IsError bool
	}
)
