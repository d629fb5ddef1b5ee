package infra

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	"github.com/juliosincable/infourbi/internal/config"
)

// Firebase holds the clients created from one firebase app. Auth is nil
// unless AUTH_PROVIDER=firebase, Firestore unless STORE_DRIVER=firestore.
type Firebase struct {
	Auth      *auth.Client
	Firestore *firestore.Client
}

// NewFirebase initialises the app with FIREBASE_CREDENTIALS_FILE, or with
// application default credentials when the file is not set.
func NewFirebase(ctx context.Context, cfg *config.Config) (*Firebase, error) {
	var opts []option.ClientOption
	if cfg.FirebaseCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.FirebaseCredentialsFile))
	}
	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.FirebaseProjectID}, opts...)
	if err != nil {
		return nil, fmt.Errorf("firebase: init app: %w", err)
	}

	fb := &Firebase{}
	if cfg.AuthProvider == config.AuthFirebase {
		if fb.Auth, err = app.Auth(ctx); err != nil {
			return nil, fmt.Errorf("firebase: auth client: %w", err)
		}
	}
	if cfg.StoreDriver == config.DriverFirestore {
		if fb.Firestore, err = app.Firestore(ctx); err != nil {
			return nil, fmt.Errorf("firebase: firestore client: %w", err)
		}
	}
	return fb, nil
}
