package batch

import (
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-crossref/internal/pipeline"
	"github.com/goliatone/go-crossref/pkg/interfaces"
)

const (
	renderFailedCode   = "XREF_RENDER_FAILED"
	brokenLinksCode    = "XREF_BROKEN_LINKS"
	invalidOptionsCode = "XREF_VALIDATION_FAILED"
	processFailedCode  = "XREF_PROCESS_FAILED"
)

// BrokenLinksError carries every offending reference when the broken-links
// policy fails a processing call.
type BrokenLinksError struct {
	Refs []interfaces.Reference
}

func (e *BrokenLinksError) Error() string {
	return fmt.Sprintf("crossref: %d broken links", len(e.Refs))
}

func wrapOptionsError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid process options").
		WithTextCode(invalidOptionsCode)
}

func wrapProcessError(err error) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	switch err.(type) {
	case *BrokenLinksError:
		return goerrors.Wrap(err, goerrors.CategoryValidation, "document has broken cross-references").
			WithTextCode(brokenLinksCode)
	case *pipeline.RenderError:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "markdown rendering failed").
			WithTextCode(renderFailedCode)
	default:
		return goerrors.Wrap(err, goerrors.CategoryCommand, "document processing failed").
			WithTextCode(processFailedCode)
	}
}
