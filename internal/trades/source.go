package trades

import "context"

// Source supplies trades in the order their P&L was realized.
type Source interface {
	Fetch(ctx context.Context) (*Batch, error)
	Name() string
}

// FileSource reads trades from a JSON or YAML file.
type FileSource struct {
	Path string
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) Fetch(ctx context.Context) (*Batch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return Load(f.Path)
}
