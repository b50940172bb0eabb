// Package shortener stores encoded session-state fragments under short
// ids so full sessions can be shared as tiny URLs. Links live in a
// JetStream KV bucket; the encoded fragment itself is opaque here.
package shortener

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/xid"

	"github.com/jacobpanov/compiler-explorer/internal/messages"
)

// Bucket is the KV bucket holding short links.
const Bucket = "shortlinks"

// hashPrefix namespaces the content-hash index keys so they cannot
// collide with link ids.
const hashPrefix = "sha."

// ErrNotFound is returned by Resolve for an unknown link id.
var ErrNotFound = errors.New("shortener: link not found")

// Store persists and resolves short links.
type Store struct {
	kv  jetstream.KeyValue
	pub *messages.Publisher
}

// NewStore creates (or reuses) the short-link bucket and returns a store
// over it.
func NewStore(ctx context.Context, js jetstream.JetStream) (*Store, error) {
	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      Bucket,
		Description: "encoded session state fragments keyed by short id",
		Storage:     jetstream.FileStorage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s bucket: %w", Bucket, err)
	}
	return &Store{kv: kv, pub: messages.NewPublisher(js)}, nil
}

// Save stores a fragment and returns its short id. Saving the same
// fragment twice returns the id minted the first time: a content-hash
// index is checked before a new id is issued.
func (s *Store) Save(ctx context.Context, fragment, clientID string) (string, error) {
	if fragment == "" {
		return "", fmt.Errorf("shortener: empty fragment")
	}

	hashKey := hashPrefix + contentHash(fragment)
	if entry, err := s.kv.Get(ctx, hashKey); err == nil {
		return string(entry.Value()), nil
	}

	id := xid.New().String()
	if _, err := s.kv.Put(ctx, id, []byte(fragment)); err != nil {
		return "", fmt.Errorf("store link %s: %w", id, err)
	}
	if _, err := s.kv.Put(ctx, hashKey, []byte(id)); err != nil {
		return "", fmt.Errorf("index link %s: %w", id, err)
	}

	evt := messages.NewShortLinkCreatedEvent(id, len(fragment)).WithClient(clientID)
	if err := s.pub.PublishEvent(ctx, evt); err != nil {
		// The link is stored and usable; the event is advisory.
		slog.Warn("shortener: created event not published", "id", id, "err", err)
	}
	return id, nil
}

// Resolve returns the fragment stored under id.
func (s *Store) Resolve(ctx context.Context, id string) (string, error) {
	entry, err := s.kv.Get(ctx, id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("resolve link %s: %w", id, err)
	}
	if err := s.pub.PublishEvent(ctx, messages.NewShortLinkResolvedEvent(id)); err != nil {
		slog.Warn("shortener: resolved event not published", "id", id, "err", err)
	}
	return string(entry.Value()), nil
}

func contentHash(fragment string) string {
	sum := sha256.Sum256([]byte(fragment))
	return base64.RawURLEncoding.EncodeToString(sum[:12])
}
