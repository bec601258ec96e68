package document

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRecordJoin(t *testing.T) {
	d := New("doc1")
	d.RecordJoin("conn1", "Ana")

	snap := d.Snapshot()
	require.Equal(t, []string{"Ana"}, snap.Authors)
	require.Equal(t, "Ana", snap.Participants["conn1"])
	require.Equal(t, 1, snap.Activity["Ana"].Joins)
	require.False(t, snap.Activity["Ana"].LastActivityAt.IsZero())
	require.Len(t, snap.Events, 1)
	require.Contains(t, snap.Events[0].Text, "Ana")
	require.NotEmpty(t, snap.Events[0].Timestamp)
}

func TestRecordJoinDeduplicatesAuthors(t *testing.T) {
	d := New("doc1")
	d.RecordJoin("conn1", "Ana")
	d.RecordJoin("conn2", "Ana")

	snap := d.Snapshot()
	require.Equal(t, []string{"Ana"}, snap.Authors)
	require.Equal(t, 2, snap.Activity["Ana"].Joins)
	require.Len(t, snap.Participants, 2)
}

func TestRecordEditDoesNotLog(t *testing.T) {
	d := New("doc1")
	d.RecordJoin("conn1", "Ana")
	events := len(d.Snapshot().Events)

	d.RecordEdit("Ana", "v1")
	d.RecordEdit("Ana", "v2")

	snap := d.Snapshot()
	require.Equal(t, 2, snap.Activity["Ana"].Edits)
	require.Len(t, snap.Events, events)
}

func TestRecordEditIsOneMutation(t *testing.T) {
	d := New("doc1")
	d.RecordJoin("conn1", "Ana")
	before := d.Snapshot().Revision

	d.RecordEdit("Ana", "hola")

	snap := d.Snapshot()
	require.Equal(t, "hola", snap.Content)
	require.Equal(t, 1, snap.Activity["Ana"].Edits)
	require.Equal(t, before+1, snap.Revision)
}

func TestRecordDisconnectKeepsAuthor(t *testing.T) {
	d := New("doc1")
	d.RecordJoin("conn1", "Ana")
	d.RecordDisconnect("conn1", "Ana")

	snap := d.Snapshot()
	require.NotContains(t, snap.Participants, "conn1")
	require.Equal(t, []string{"Ana"}, snap.Authors)
	require.Equal(t, 1, snap.Activity["Ana"].Disconnects)
	require.Len(t, snap.Events, 2)
}

func TestSnapshotIsDetached(t *testing.T) {
	d := New("doc1")
	d.RecordJoin("conn1", "Ana")
	snap := d.Snapshot()

	d.RecordEdit("Ana", "mutated")

	require.Equal(t, "", snap.Content)
	require.Equal(t, 0, snap.Activity["Ana"].Edits)
}
