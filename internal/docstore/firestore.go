package docstore

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// FirestoreStore is the production Store backed by Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore initializes the Firestore client. It first attempts to
// use credentials from the FIREBASE_SERVICE_ACCOUNT_JSON environment variable
// (Base64 encoded) and falls back to a local service account key file.
func NewFirestoreStore(ctx context.Context, localFilePath string) (*FirestoreStore, error) {
	var opt option.ClientOption

	encodedCreds := os.Getenv("FIREBASE_SERVICE_ACCOUNT_JSON")
	if encodedCreds != "" {
		decoded, err := base64.StdEncoding.DecodeString(encodedCreds)
		if err != nil {
			return nil, fmt.Errorf("failed to decode base64 firebase credentials from FIREBASE_SERVICE_ACCOUNT_JSON: %v", err)
		}
		opt = option.WithCredentialsJSON(decoded)
		log.Println("Firestore: Initializing from FIREBASE_SERVICE_ACCOUNT_JSON environment variable.")
	} else {
		if _, err := os.Stat(localFilePath); os.IsNotExist(err) {
			return nil, fmt.Errorf("local firebase file not found: %s, and FIREBASE_SERVICE_ACCOUNT_JSON environment variable is not set", localFilePath)
		}
		opt = option.WithCredentialsFile(localFilePath)
		log.Printf("Firestore: Initializing from local file: %s.", localFilePath)
	}

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %v", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %v", err)
	}

	return &FirestoreStore{client: client}, nil
}

func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

func (s *FirestoreStore) Get(ctx context.Context, path string) (map[string]any, error) {
	snap, err := s.client.Doc(path).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return snap.Data(), nil
}

func (s *FirestoreStore) Set(ctx context.Context, path string, fields map[string]any, merge bool) error {
	var opts []firestore.SetOption
	if merge {
		opts = append(opts, firestore.MergeAll)
	}
	_, err := s.client.Doc(path).Set(ctx, translateFields(fields), opts...)
	return err
}

func (s *FirestoreStore) Update(ctx context.Context, path string, fields map[string]any) error {
	updates := make([]firestore.Update, 0, len(fields))
	for key, value := range fields {
		updates = append(updates, firestore.Update{Path: key, Value: translateValue(value)})
	}
	_, err := s.client.Doc(path).Update(ctx, updates)
	if status.Code(err) == codes.NotFound {
		return ErrNotFound
	}
	return err
}

func (s *FirestoreStore) Add(ctx context.Context, collection string, fields map[string]any) (string, error) {
	// Client-generated IDs so the ID is known before the write lands.
	id := uuid.NewString()
	_, err := s.client.Collection(collection).Doc(id).Set(ctx, translateFields(fields))
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *FirestoreStore) Query(ctx context.Context, collection string, filters []Filter, opts ...QueryOption) ([]Doc, error) {
	var options QueryOptions
	for _, opt := range opts {
		opt(&options)
	}

	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, f.Op, f.Value)
	}
	if options.OrderField != "" {
		dir := firestore.Asc
		if options.Descending {
			dir = firestore.Desc
		}
		q = q.OrderBy(options.OrderField, dir)
	}
	if options.LimitN > 0 {
		q = q.Limit(options.LimitN)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var docs []Doc
	for {
		snap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, Doc{ID: snap.Ref.ID, Data: snap.Data()})
	}
	return docs, nil
}

func (s *FirestoreStore) Delete(ctx context.Context, path string) error {
	_, err := s.client.Doc(path).Delete(ctx)
	return err
}

func (s *FirestoreStore) Subscribe(ctx context.Context, collection string, filters []Filter) (<-chan []Doc, func()) {
	q := s.client.Collection(collection).Query
	for _, f := range filters {
		q = q.Where(f.Field, f.Op, f.Value)
	}

	ctx, cancel := context.WithCancel(ctx)
	out := make(chan []Doc)

	go func() {
		defer close(out)
		snaps := q.Snapshots(ctx)
		defer snaps.Stop()
		for {
			snap, err := snaps.Next()
			if err != nil {
				if status.Code(err) != codes.Canceled {
					log.Printf("Firestore: snapshot watch on %s failed: %v", collection, err)
				}
				return
			}

			var docs []Doc
			iter := snap.Documents
			for {
				docSnap, err := iter.Next()
				if err == iterator.Done {
					break
				}
				if err != nil {
					log.Printf("Firestore: snapshot read on %s failed: %v", collection, err)
					break
				}
				docs = append(docs, Doc{ID: docSnap.Ref.ID, Data: docSnap.Data()})
			}

			select {
			case out <- docs:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cancel
}

func translateFields(fields map[string]any) map[string]any {
	out := make(map[string]any, len(fields))
	for key, value := range fields {
		out[key] = translateValue(value)
	}
	return out
}

func translateValue(value any) any {
	if inc, ok := value.(incrementValue); ok {
		return firestore.Increment(inc.Delta)
	}
	return value
}
