package lang

import (
	"context"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/zeebo/xxh3"
)

// tokenCache maps a source hash to the *cacheEntry holding its tokens.
var tokenCache sync.Map

type cacheEntry struct {
	once   sync.Once
	source string
	tokens []Token
	err    error
}

// lexCached lexes source at most once per distinct text. Entries whose
// source differs from the one being lexed (a hash collision) are bypassed.
func lexCached(ctx context.Context, source string, o options) ([]Token, error) {
	hash := xxh3.HashString(source)

	value, hit := tokenCache.LoadOrStore(hash, &cacheEntry{source: source})

	entry, ok := value.(*cacheEntry)
	if !ok || entry.source != source {
		o.logger.TraceContext(ctx, "token cache bypass",
			slog.String("source_hash", strconv.FormatUint(hash, 16)),
		)

		return lex(ctx, source, o)
	}

	o.logger.TraceContext(ctx, "token cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	entry.once.Do(func() {
		entry.tokens, entry.err = lex(ctx, source, o)
	})

	if entry.err != nil {
		return nil, entry.err
	}

	return slices.Clone(entry.tokens), nil
}

// ClearCache removes every cached token stream.
func ClearCache() {
	tokenCache.Clear()
}
