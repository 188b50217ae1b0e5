package services

import (
	"context"
	"fmt"

	"integraportal/model"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GetAdminSettings reads the adminSettings/main document. A missing
// document yields zero-value settings (every toggle at its default).
func GetAdminSettings(ctx context.Context, firestoreClient *firestore.Client) (*model.AdminSettings, error) {
	doc, err := firestoreClient.Collection("adminSettings").Doc("main").Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return &model.AdminSettings{}, nil
		}
		return nil, fmt.Errorf("failed to get settings: %v", err)
	}

	var settings model.AdminSettings
	if err := doc.DataTo(&settings); err != nil {
		return nil, fmt.Errorf("failed to decode settings: %v", err)
	}
	return &settings, nil
}

func GetTeam(ctx context.Context, firestoreClient *firestore.Client, teamID string) (*model.Team, error) {
	doc, err := firestoreClient.Collection("teams").Doc(teamID).Get(ctx)
	if err != nil {
		return nil, err
	}

	var team model.Team
	if err := doc.DataTo(&team); err != nil {
		return nil, fmt.Errorf("failed to decode team: %v", err)
	}
	return &team, nil
}

// FindTeamByEmail resolves a team by its leader email. Returns the doc id
// alongside the team, empty id when no team matches.
func FindTeamByEmail(ctx context.Context, firestoreClient *firestore.Client, email string) (string, *model.Team, error) {
	docs, err := firestoreClient.Collection("teams").
		Where("email", "==", email).
		Limit(1).
		Documents(ctx).GetAll()
	if err != nil {
		return "", nil, err
	}
	if len(docs) == 0 {
		return "", nil, nil
	}

	var team model.Team
	if err := docs[0].DataTo(&team); err != nil {
		return "", nil, fmt.Errorf("failed to decode team: %v", err)
	}
	return docs[0].Ref.ID, &team, nil
}

func GetTeamParticipants(ctx context.Context, firestoreClient *firestore.Client, teamID string) ([]model.Participant, []string, error) {
	docs, err := firestoreClient.Collection("participants").
		Where("teamId", "==", teamID).
		Documents(ctx).GetAll()
	if err != nil {
		return nil, nil, err
	}

	participants := make([]model.Participant, 0, len(docs))
	ids := make([]string, 0, len(docs))
	for _, doc := range docs {
		var p model.Participant
		if err := doc.DataTo(&p); err != nil {
			return nil, nil, fmt.Errorf("failed to decode participant: %v", err)
		}
		participants = append(participants, p)
		ids = append(ids, doc.Ref.ID)
	}
	return participants, ids, nil
}

// ContactExists checks teams and participants for an email or phone
// already in use (global duplicate guard on registration).
func ContactExists(ctx context.Context, firestoreClient *firestore.Client, field, value string) (bool, error) {
	for _, collection := range []string{"teams", "participants"} {
		docs, err := firestoreClient.Collection(collection).
			Where(field, "==", value).
			Limit(1).
			Documents(ctx).GetAll()
		if err != nil {
			return false, err
		}
		if len(docs) > 0 {
			return true, nil
		}
	}
	return false, nil
}
