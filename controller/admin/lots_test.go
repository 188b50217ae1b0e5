package admin

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssignLotNumbersSharesLotPerCollege(t *testing.T) {
	entries := []lotEntry{
		{EventName: "HackBlitz", CollegeName: "College A", ParticipantID: "p1"},
		{EventName: "HackBlitz", CollegeName: "College A", ParticipantID: "p2"},
		{EventName: "HackBlitz", CollegeName: "College B", ParticipantID: "p3"},
		{EventName: "HackBlitz", CollegeName: "College A", ParticipantID: "p4"},
	}

	assignments := assignLotNumbers(entries)
	require.Len(t, assignments, 4)

	require.Equal(t, 1, assignments[0].LotNumber)
	require.Equal(t, 1, assignments[1].LotNumber)
	require.Equal(t, 2, assignments[2].LotNumber)
	require.Equal(t, 1, assignments[3].LotNumber)
}

func TestAssignLotNumbersCountsPerEvent(t *testing.T) {
	entries := []lotEntry{
		{EventName: "HackBlitz", CollegeName: "College A", ParticipantID: "p1"},
		{EventName: "HackBlitz", CollegeName: "College B", ParticipantID: "p2"},
		{EventName: "BrainBytes", CollegeName: "College B", ParticipantID: "p2"},
		{EventName: "BrainBytes", CollegeName: "College C", ParticipantID: "p3"},
	}

	assignments := assignLotNumbers(entries)

	// Each event numbers from 1 independently.
	require.Equal(t, 1, assignments[0].LotNumber)
	require.Equal(t, 2, assignments[1].LotNumber)
	require.Equal(t, 1, assignments[2].LotNumber)
	require.Equal(t, 2, assignments[3].LotNumber)
}

func TestAssignLotNumbersSameCollegeAcrossEvents(t *testing.T) {
	entries := []lotEntry{
		{EventName: "HackBlitz", CollegeName: "College A", ParticipantID: "p1"},
		{EventName: "BrainBytes", CollegeName: "College A", ParticipantID: "p1"},
	}

	assignments := assignLotNumbers(entries)

	// College identity is scoped to the event, not global.
	require.Equal(t, "HackBlitz", assignments[0].EventName)
	require.Equal(t, "BrainBytes", assignments[1].EventName)
	require.Equal(t, 1, assignments[0].LotNumber)
	require.Equal(t, 1, assignments[1].LotNumber)
}

func TestAssignLotNumbersEmpty(t *testing.T) {
	require.Empty(t, assignLotNumbers(nil))
}

func TestCollectLotUpdatesDeduplicates(t *testing.T) {
	assignments := assignLotNumbers([]lotEntry{
		{EventName: "HackBlitz", CollegeName: "College A", TeamID: "t1", ParticipantID: "p1"},
		{EventName: "HackBlitz", CollegeName: "College A", TeamID: "t1", ParticipantID: "p2"},
		{EventName: "BrainBytes", CollegeName: "College A", TeamID: "t1", ParticipantID: "p1"},
		{EventName: "HackBlitz", CollegeName: "College B", TeamID: "t2", ParticipantID: "p3"},
	})

	participantLots, teamLots := collectLotUpdates(assignments)

	// One update per participant document, keyed by event.
	require.Len(t, participantLots, 3)
	require.Equal(t, map[string]int{"HackBlitz": 1, "BrainBytes": 1}, participantLots["p1"])
	require.Equal(t, map[string]int{"HackBlitz": 1}, participantLots["p2"])
	require.Equal(t, map[string]int{"HackBlitz": 2}, participantLots["p3"])

	// Two college mates in the same event collapse to one lot number on
	// the team document.
	require.Len(t, teamLots, 2)
	require.Equal(t, map[string][]int{"HackBlitz": {1}, "BrainBytes": {1}}, teamLots["t1"])
	require.Equal(t, map[string][]int{"HackBlitz": {2}}, teamLots["t2"])
}

func TestCollectLotUpdatesEmpty(t *testing.T) {
	participantLots, teamLots := collectLotUpdates(nil)
	require.Empty(t, participantLots)
	require.Empty(t, teamLots)
}
