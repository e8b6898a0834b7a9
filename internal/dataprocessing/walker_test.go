package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evedata/internal/container"
)

func TestWalkJoinsLeavesOnSharedIndex(t *testing.T) {
	node := container.NewGroup("default", nil,
		flatLeaf("Counter1", channelAttrs("ct1", "", "", ""),
			posCounterColumn(1, 2),
			floatColumn("Counter1", 1.5, 2.5)),
		flatLeaf("Motor1", channelAttrs("m1", "", "", ""),
			posCounterColumn(1, 3),
			floatColumn("Motor1", 10.0, 30.0)))

	rec, err := walkNode(node)
	require.NoError(t, err)

	require.NotNil(t, rec.Data)
	assert.Nil(t, rec.DataByName)
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, rec.Data.Index.Values)
	assert.ElementsMatch(t, []string{"Counter1", "Motor1"}, rec.Data.ColumnNames())
	assert.Equal(t, []string{"Counter1", "Motor1"}, rec.DataNames)
}

func TestWalkKeepsSeparateTablesOnForeignIndex(t *testing.T) {
	node := container.NewGroup("device", nil,
		flatLeaf("Ring", nil,
			intColumn("mSecsSinceStart", 100, 200),
			floatColumn("Ring", 250.0, 249.5)),
		flatLeaf("Shutter", nil,
			intColumn("mSecsSinceStart", 150),
			floatColumn("Shutter", 1.0)))

	rec, err := walkNode(node)
	require.NoError(t, err)

	assert.Nil(t, rec.Data, "tables without the position counter index stay unjoined")
	require.NotNil(t, rec.DataByName)
	assert.Len(t, rec.DataByName, 2)
	assert.Equal(t, []string{"Ring", "Shutter"}, rec.DataNames)
}

func TestWalkRecursesIntoSubgroups(t *testing.T) {
	node := container.NewGroup("c1", container.Attributes{"StartDate": {"01.02.2024"}},
		container.NewGroup("default", nil,
			flatLeaf("Counter1", nil,
				posCounterColumn(1),
				floatColumn("Counter1", 1.0))))

	rec, err := walkNode(node)
	require.NoError(t, err)

	assert.Equal(t, []string{"01.02.2024"}, rec.Info["StartDate"])
	sub, ok := rec.Child("default")
	require.True(t, ok)
	assert.NotNil(t, sub.Data)
}

func TestWalkSkipsPayloadlessLeaves(t *testing.T) {
	node := container.NewGroup("default", nil,
		container.NewLeaf("broken", nil, nil),
		flatLeaf("Counter1", nil,
			posCounterColumn(1),
			floatColumn("Counter1", 1.0)))

	rec, err := walkNode(node)
	require.NoError(t, err)
	assert.Equal(t, []string{"Counter1"}, rec.DataNames)
}

func TestWalkNameCollisionKeepsLaterTable(t *testing.T) {
	node := container.NewGroup("default", nil,
		flatLeaf("Counter1", container.Attributes{"Name": {"Counter"}},
			posCounterColumn(1),
			floatColumn("Counter1", 1.0)),
		flatLeaf("Counter2", container.Attributes{"Name": {"Counter"}},
			posCounterColumn(1),
			floatColumn("Counter2", 2.0)))

	rec, err := walkNode(node)
	require.NoError(t, err)

	assert.Equal(t, []string{"Counter"}, rec.DataNames)
	col, ok := rec.Data.Column("Counter")
	require.True(t, ok)
	assert.Equal(t, 2.0, col.Values[0])
}

func TestWalkMetadataKeyedByResolvedName(t *testing.T) {
	node := container.NewGroup("default", nil,
		flatLeaf("Counter1", channelAttrs("ct1", "Counter", "counts", "Channel"),
			posCounterColumn(1),
			floatColumn("Counter1", 1.0)))

	rec, err := walkNode(node)
	require.NoError(t, err)

	meta, ok := rec.Metadata["Counter"]
	require.True(t, ok)
	xmlID, _ := meta.Get("XML-ID")
	assert.Equal(t, "ct1", xmlID)
}
