// Copyright 2026 The VoteATX Authors
//
// SPDX-License-Identifier: Apache-2.0
package resolver

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

// mapsKeyDisplayName identifies the browser key provisioned for the map
// frontend in the project's API key inventory.
const mapsKeyDisplayName = "VoteATX Maps Key"

// MapsAPIKey resolves the Google Maps browser key handed to the map
// frontend: the GOOGLE_MAPS_API_KEY environment variable when set,
// otherwise a lookup through Application Default Credentials. A missing
// key is not fatal; the API works without the map overlay.
func MapsAPIKey(ctx context.Context) string {
	if key := os.Getenv("GOOGLE_MAPS_API_KEY"); key != "" {
		return key
	}

	log.Println("GOOGLE_MAPS_API_KEY is not set. Attempting to retrieve via ADC...")

	key, err := mapsKeyFromADC(ctx)
	if err != nil {
		log.Printf("Failed to retrieve Maps API key via ADC: %v", err)

		return ""
	}

	return key
}

func mapsKeyFromADC(ctx context.Context) (string, error) {
	creds, err := google.FindDefaultCredentials(ctx, "https://www.googleapis.com/auth/cloud-platform")
	if err != nil {
		return "", fmt.Errorf("finding default credentials: %w", err)
	}

	projectID := creds.ProjectID
	if projectID == "" {
		return "", errors.New("no project ID in default credentials")
	}

	client, err := apikeys.NewClient(ctx)
	if err != nil {
		return "", fmt.Errorf("creating apikeys client: %w", err)
	}
	defer client.Close()

	req := &apikeyspb.ListKeysRequest{
		Parent: fmt.Sprintf("projects/%s/locations/global", projectID),
	}

	it := client.ListKeys(ctx, req)

	for {
		key, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}

		if err != nil {
			return "", fmt.Errorf("listing keys: %w", err)
		}

		if key.DisplayName != mapsKeyDisplayName {
			continue
		}

		// ListKeys redacts KeyString; GetKeyString retrieves the secret.
		resp, err := client.GetKeyString(ctx, &apikeyspb.GetKeyStringRequest{Name: key.Name})
		if err != nil {
			return "", fmt.Errorf("getting key string: %w", err)
		}

		if resp.KeyString == "" {
			return "", fmt.Errorf("key %q found but KeyString is empty", mapsKeyDisplayName)
		}

		return resp.KeyString, nil
	}

	return "", fmt.Errorf("key with display name %q not found in project %s", mapsKeyDisplayName, projectID)
}
