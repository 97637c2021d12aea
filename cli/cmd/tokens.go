package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ardnew/plc/lang"
)

// Tokens lexes a program and lists its tokens.
type Tokens struct {
	Source string `arg:"" default:"-" help:"Program source file, or '-' for stdin." name:"source"`
	JSON   bool   `help:"Write one JSON object per token."`
}

// Run executes the tokens command.
func (t *Tokens) Run(ctx context.Context) error {
	s, err := openSource(ctx, t.Source)
	if err != nil {
		return err
	}

	tokens, err := lang.Lex(ctx, s.text, pipeline(false)...)
	if err != nil {
		return s.fail(ctx, err)
	}

	out := streamsFrom(ctx).Out
	enc := json.NewEncoder(out)

	for _, tok := range tokens {
		if t.JSON {
			err = enc.Encode(tok)
		} else {
			_, err = fmt.Fprintf(out, "%6d  %-10s %s\n", tok.Offset, tok.Kind, strconv.Quote(tok.Literal))
		}

		if err != nil {
			return ErrWriteOutput.Wrap(err)
		}
	}

	return nil
}
