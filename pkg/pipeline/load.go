package pipeline

import (
	"context"
	"time"

	"github.com/zenui/zendiagram/pkg/document"
	"github.com/zenui/zendiagram/pkg/observability"
)

// LoadFile reads and validates the document at path. The format is taken
// from the file extension.
func LoadFile(ctx context.Context, path string) (*document.Document, error) {
	format, _ := document.FormatFromPath(path)
	start := time.Now()
	doc, err := document.ReadFile(path)
	reportLoad(ctx, format, path, doc, start, err)
	return doc, err
}

// Load decodes and validates a document held in memory. source names the
// origin in hooks and logs.
func Load(ctx context.Context, data []byte, format document.Format, source string) (*document.Document, error) {
	start := time.Now()
	doc, err := document.Parse(data, format)
	reportLoad(ctx, format, source, doc, start, err)
	return doc, err
}

func reportLoad(ctx context.Context, format document.Format, source string, doc *document.Document, start time.Time, err error) {
	e := observability.LoadEvent{
		Format:   string(format),
		Source:   source,
		Duration: time.Since(start),
		Err:      err,
	}
	if doc != nil {
		e.Nodes = len(doc.Nodes)
	}
	observability.Current().Load(ctx, e)
}
