// Copyright 2025 The GeoMap Authors
// SPDX-License-Identifier: Apache-2.0

package geocoding

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"

	apikeys "cloud.google.com/go/apikeys/apiv2"
	"cloud.google.com/go/apikeys/apiv2/apikeyspb"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/iterator"
)

// APIKeyEnv holds the Google Maps API key.
const APIKeyEnv = "GOOGLE_MAPS_API_KEY"

// APIKeyDisplayName is the display name of the key looked up through ADC.
const APIKeyDisplayName = "GeoMap Maps Key"

// ResolveAPIKey returns the key in env, or looks it up in the default
// credentials project when env is unset.
func ResolveAPIKey(ctx context.Context, env, displayName string) (string, error) {
	if key := os.Getenv(env); key != "" {
		return key, nil
	}

	log.Printf("%s is not set. Attempting to retrieve via ADC...", env)

	key, err := apiKeyFromADC(ctx, displayName)
	if err != nil {
		return "", fmt.Errorf("%s is not set and ADC lookup failed: %w", env, err)
	}

	log.Println("Retrieved Google Maps API key via ADC")

	return key, nil
}

// MapsServices are the APIs a key created by EnsureAPIKey is restricted to.
var MapsServices = []string{
	"geocoding-backend.googleapis.com",
	"maps-backend.googleapis.com",
}

// DefaultProject returns the project of the application default credentials.
func DefaultProject(ctx context.Context) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	if creds.ProjectID == "" {
		// user credentials without a quota project
		return "", errors.New("default credentials carry no project id")
	}

	return creds.ProjectID, nil
}

func apiKeyFromADC(ctx context.Context, displayName string) (string, error) {
	projectID, err := DefaultProject(ctx)
	if err != nil {
		return "", err
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	key, err := findKey(ctx, client, projectID, displayName)
	if err != nil {
		return "", err
	}

	if key == nil {
		return "", fmt.Errorf("key with display name '%s' not found in project %s", displayName, projectID)
	}

	return keyString(ctx, client, key)
}

// EnsureAPIKey returns the key named displayName in projectID, creating it
// restricted to services when missing. created reports whether it was created.
// An empty projectID selects DefaultProject.
func EnsureAPIKey(ctx context.Context, projectID, displayName string, services []string) (key string, created bool, err error) {
	if projectID == "" {
		if projectID, err = DefaultProject(ctx); err != nil {
			return "", false, err
		}
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", false, fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	existing, err := findKey(ctx, client, projectID, displayName)
	if err != nil {
		return "", false, err
	}

	if existing != nil {
		key, err = keyString(ctx, client, existing)

		return key, false, err
	}

	log.Printf("Creating API key '%s' in project %s...", displayName, projectID)

	targets := make([]*apikeyspb.ApiTarget, 0, len(services))
	for _, s := range services {
		targets = append(targets, &apikeyspb.ApiTarget{Service: s})
	}

	op, err := client.CreateKey(ctx, &apikeyspb.CreateKeyRequest{
		Parent: keysParent(projectID),
		Key: &apikeyspb.Key{
			DisplayName:  displayName,
			Restrictions: &apikeyspb.Restrictions{ApiTargets: targets},
		},
	})
	if err != nil {
		return "", false, fmt.Errorf("creating API key: %w", err)
	}

	k, err := op.Wait(ctx)
	if err != nil {
		return "", false, fmt.Errorf("waiting for API key creation: %w", err)
	}

	return k.KeyString, true, nil
}

func keysParent(projectID string) string {
	return fmt.Sprintf("projects/%s/locations/global", projectID)
}

// findKey returns the key named displayName, nil when there is none.
func findKey(ctx context.Context, client *apikeys.Client, projectID, displayName string) (*apikeyspb.Key, error) {
	it := client.ListKeys(ctx, &apikeyspb.ListKeysRequest{Parent: keysParent(projectID)})

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			return nil, nil
		}

		if err != nil {
			return nil, fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName == displayName {
			return key, nil
		}
	}
}

// keyString fetches the secret of key, which ListKeys redacts.
func keyString(ctx context.Context, client *apikeys.Client, key *apikeyspb.Key) (string, error) {
	resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
	if err != nil {
		return "", fmt.Errorf("getting key string: %w", err)
	}

	if resp.KeyString == "" {
		return "", fmt.Errorf("key '%s' found but its key string is empty", key.DisplayName)
	}

	return resp.KeyString, nil
}
