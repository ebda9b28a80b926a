package transform

import (
	"context"
	"fmt"
	"io"
)

// Transformer turns the bytes of an uploaded artifact into the enhanced
// output according to settings. Implementations must write the complete
// output to dst or return an error; the caller discards partial output.
type Transformer interface {
	Name() string
	Transform(ctx context.Context, dst io.Writer, src io.Reader, settings Settings) error
}

// Identity is the pass-through Transformer: the output is a byte-for-byte
// copy of the input and settings are ignored.
type Identity struct{}

// Name implements Transformer.
func (Identity) Name() string { return "identity" }

// Transform implements Transformer.
func (Identity) Transform(ctx context.Context, dst io.Writer, src io.Reader, _ Settings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	return nil
}
