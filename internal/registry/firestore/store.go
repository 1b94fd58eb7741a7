// Package firestore implements the registration Store on Google Cloud
// Firestore.
package firestore

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/lanternhq/go-push-relay/internal/registry"
)

type Store struct {
	client *firestore.Client
}

var _ registry.Store = (*Store)(nil)

func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Save(ctx context.Context, reg registry.Registration) error {
	reg.UpdatedAt = time.Now()
	_, err := s.registrationRef(reg.PlatformApplicationARN, reg.Token).Set(ctx, reg)
	return err
}

func (s *Store) Lookup(ctx context.Context, platformApplicationARN, token string) (*registry.Registration, error) {
	doc, err := s.registrationRef(platformApplicationARN, token).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, registry.ErrNotFound
		}
		return nil, err
	}

	var reg registry.Registration
	if err := doc.DataTo(&reg); err != nil {
		return nil, fmt.Errorf("firestore decode failed: %w", err)
	}
	return &reg, nil
}

func (s *Store) Delete(ctx context.Context, platformApplicationARN, token string) error {
	_, err := s.registrationRef(platformApplicationARN, token).Delete(ctx)
	return err
}

func (s *Store) List(ctx context.Context, platformApplicationARN string) ([]registry.Registration, error) {
	iter := s.appCollection(platformApplicationARN).Documents(ctx)
	defer iter.Stop()

	var out []registry.Registration
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("firestore iteration failed: %w", err)
		}

		var reg registry.Registration
		if err := doc.DataTo(&reg); err != nil {
			// Corrupt rows are skipped rather than failing the listing.
			continue
		}
		out = append(out, reg)
	}
	return out, nil
}

// registrationRef: platform_apps/{appHash}/endpoints/{regHash}
func (s *Store) registrationRef(platformApplicationARN, token string) *firestore.DocumentRef {
	return s.appCollection(platformApplicationARN).Doc(registry.Key(platformApplicationARN, token))
}

func (s *Store) appCollection(platformApplicationARN string) *firestore.CollectionRef {
	// Hash the application ARN for the doc id; raw ARNs contain '/'.
	appID := registry.Key(platformApplicationARN, "")
	return s.client.Collection("platform_apps").Doc(appID).Collection("endpoints")
}
