package dataset

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/corpus/pkg/errors"
)

func ints(vs ...int) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}

func TestFromColumns(t *testing.T) {
	ds, err := FromColumns(map[string][]any{
		"x": ints(1, 2, 3),
		"y": {"a", "b", "c"},
	})
	require.NoError(t, err)
	require.Equal(t, 3, ds.Len())
	require.Equal(t, []string{"x", "y"}, ds.FieldNames())
}

func TestFromColumnsLengthMismatch(t *testing.T) {
	_, err := FromColumns(map[string][]any{
		"x": ints(1, 2, 3),
		"y": ints(1, 2),
	})
	require.Error(t, err)
	require.True(t, errors.IsType(err, errors.ErrorTypeSchema))
}

func TestAppend(t *testing.T) {
	ds := New()
	require.NoError(t, ds.Append(Instance{"x": 1, "y": "a"}))
	require.NoError(t, ds.Append(Instance{"x": 2, "y": "b"}))
	require.Equal(t, 2, ds.Len())

	row, err := ds.Row(1)
	require.NoError(t, err)
	require.Equal(t, Instance{"x": 2, "y": "b"}, row)
}

func TestAppendFieldSetMismatch(t *testing.T) {
	ds := New()
	require.NoError(t, ds.Append(Instance{"x": 1}))

	err := ds.Append(Instance{"x": 2, "y": 3})
	require.True(t, errors.IsType(err, errors.ErrorTypeSchema))

	err = ds.Append(Instance{"z": 2})
	require.True(t, errors.IsType(err, errors.ErrorTypeSchema))

	// Failed appends must not grow the dataset
	require.Equal(t, 1, ds.Len())
}

func TestAddField(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1, 2, 3)})
	require.NoError(t, err)

	require.NoError(t, ds.AddField("y", ints(4, 5, 6)))
	values, err := ds.Field("y")
	require.NoError(t, err)
	require.Equal(t, ints(4, 5, 6), values)

	// Overwrite keeps the row count and replaces content
	require.NoError(t, ds.AddField("y", ints(7, 8, 9)))
	values, err = ds.Field("y")
	require.NoError(t, err)
	require.Equal(t, ints(7, 8, 9), values)

	err = ds.AddField("z", ints(1))
	require.True(t, errors.IsType(err, errors.ErrorTypeSchema))
	require.False(t, ds.HasField("z"))
}

func TestAddFieldOwnsValues(t *testing.T) {
	ds := New()
	values := ints(1, 2)
	require.NoError(t, ds.AddField("x", values))

	values[0] = 99
	got, err := ds.Field("x")
	require.NoError(t, err)
	require.Equal(t, 1, got[0])
}

func TestDeleteField(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1), "y": ints(2)})
	require.NoError(t, err)

	require.NoError(t, ds.DeleteField("x"))
	require.False(t, ds.HasField("x"))
	require.Equal(t, 1, ds.Len())

	err = ds.DeleteField("x")
	require.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestDeleteInstance(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1, 2, 3)})
	require.NoError(t, err)

	require.NoError(t, ds.DeleteInstance(1))
	values, err := ds.Field("x")
	require.NoError(t, err)
	require.Equal(t, ints(1, 3), values)

	err = ds.DeleteInstance(5)
	require.True(t, errors.IsType(err, errors.ErrorTypeRange))
}

func TestDeleteLastInstanceClearsDataset(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1)})
	require.NoError(t, err)

	require.NoError(t, ds.DeleteInstance(0))
	require.Equal(t, 0, ds.Len())
	require.Empty(t, ds.FieldNames())
}

func TestRenameField(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1, 2)})
	require.NoError(t, err)

	require.NoError(t, ds.RenameField("x", "y"))
	require.False(t, ds.HasField("x"))

	values, err := ds.Field("y")
	require.NoError(t, err)
	require.Equal(t, ints(1, 2), values)

	err = ds.RenameField("x", "z")
	require.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestRenameFieldOntoExistingName(t *testing.T) {
	ds, err := FromColumns(map[string][]any{
		"x": ints(1, 2),
		"y": ints(3, 4),
	})
	require.NoError(t, err)

	// The renamed column replaces the existing one, leaving a single entry.
	require.NoError(t, ds.RenameField("x", "y"))
	require.Equal(t, []string{"y"}, ds.FieldNames())

	values, err := ds.Field("y")
	require.NoError(t, err)
	require.Equal(t, ints(1, 2), values)

	// The store must still accept appends with one value per field.
	require.NoError(t, ds.Append(Instance{"y": 5}))
	require.Equal(t, 3, ds.Len())
	values, err = ds.Field("y")
	require.NoError(t, err)
	require.Equal(t, ints(1, 2, 5), values)
}

func TestRenameFieldSameName(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1, 2)})
	require.NoError(t, err)

	require.NoError(t, ds.RenameField("x", "x"))
	require.Equal(t, []string{"x"}, ds.FieldNames())
	values, err := ds.Field("x")
	require.NoError(t, err)
	require.Equal(t, ints(1, 2), values)
}

func TestCopyField(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1, 2)})
	require.NoError(t, err)

	require.NoError(t, ds.CopyField("x", "y"))

	// The copy must be independent of the source
	require.NoError(t, ds.AddField("x", ints(8, 9)))
	values, err := ds.Field("y")
	require.NoError(t, err)
	require.Equal(t, ints(1, 2), values)
}

func TestRowNotFound(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1)})
	require.NoError(t, err)

	_, err = ds.Row(3)
	require.True(t, errors.IsType(err, errors.ErrorTypeNotFound))
}

func TestRowIsACopy(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1)})
	require.NoError(t, err)

	row, err := ds.Row(0)
	require.NoError(t, err)
	row["x"] = 42

	again, err := ds.Row(0)
	require.NoError(t, err)
	require.Equal(t, 1, again["x"])
}

func TestSliceRoundTrip(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(0, 1, 2, 3, 4)})
	require.NoError(t, err)

	left, err := ds.Slice(0, 2)
	require.NoError(t, err)
	right, err := ds.Slice(2, 5)
	require.NoError(t, err)

	require.NoError(t, left.Concat(right, nil))
	values, err := left.Field("x")
	require.NoError(t, err)
	require.Equal(t, ints(0, 1, 2, 3, 4), values)
}

func TestSliceOutOfRange(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1, 2)})
	require.NoError(t, err)

	_, err = ds.Slice(5, 6)
	require.True(t, errors.IsType(err, errors.ErrorTypeRange))

	_, err = ds.Slice(0, 7)
	require.True(t, errors.IsType(err, errors.ErrorTypeRange))
}

func TestSliceIsIndependent(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1, 2, 3)})
	require.NoError(t, err)

	sub, err := ds.Slice(0, 2)
	require.NoError(t, err)
	require.NoError(t, sub.AddField("x", ints(8, 9)))

	values, err := ds.Field("x")
	require.NoError(t, err)
	require.Equal(t, ints(1, 2, 3), values)
}

func TestSplitNoShuffle(t *testing.T) {
	cols := make([]any, 10)
	for i := range cols {
		cols[i] = i
	}
	ds, err := FromColumns(map[string][]any{"x": cols})
	require.NoError(t, err)

	first, second, err := ds.Split(0.3, false)
	require.NoError(t, err)
	require.Equal(t, 3, first.Len())
	require.Equal(t, 7, second.Len())

	values, err := first.Field("x")
	require.NoError(t, err)
	require.Equal(t, ints(0, 1, 2), values)

	values, err = second.Field("x")
	require.NoError(t, err)
	require.Equal(t, ints(3, 4, 5, 6, 7, 8, 9), values)
}

func TestSplitShufflePreservesRows(t *testing.T) {
	cols := make([]any, 10)
	for i := range cols {
		cols[i] = i
	}
	ds, err := FromColumns(map[string][]any{"x": cols})
	require.NoError(t, err)

	first, second, err := ds.Split(0.5, true)
	require.NoError(t, err)

	seen := make(map[any]bool)
	for _, part := range []*Dataset{first, second} {
		values, err := part.Field("x")
		require.NoError(t, err)
		for _, v := range values {
			seen[v] = true
		}
	}
	require.Len(t, seen, 10)
}

func TestSplitDegenerate(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1, 2, 3)})
	require.NoError(t, err)

	_, _, err = ds.Split(0.1, false) // 0.1 * 3 rounds to zero rows
	require.True(t, errors.IsType(err, errors.ErrorTypeRange))

	_, _, err = ds.Split(1.5, false)
	require.True(t, errors.IsType(err, errors.ErrorTypeRange))

	single, err := FromColumns(map[string][]any{"x": ints(1)})
	require.NoError(t, err)
	_, _, err = single.Split(0.5, false)
	require.True(t, errors.IsType(err, errors.ErrorTypeRange))
}

func TestDrop(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1, 2, 3, 4)})
	require.NoError(t, err)

	kept, err := ds.Drop(func(ins Instance) bool {
		return ins["x"].(int)%2 == 0
	}, false)
	require.NoError(t, err)
	require.Equal(t, 4, ds.Len())
	require.Equal(t, 2, kept.Len())

	_, err = ds.Drop(func(ins Instance) bool {
		return ins["x"].(int) > 2
	}, true)
	require.NoError(t, err)
	values, err := ds.Field("x")
	require.NoError(t, err)
	require.Equal(t, ints(1, 2), values)
}

func TestConcatFieldMapping(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1)})
	require.NoError(t, err)
	other, err := FromColumns(map[string][]any{"renamed": ints(2), "extra": ints(3)})
	require.NoError(t, err)

	require.NoError(t, ds.Concat(other, map[string]string{"renamed": "x"}))
	values, err := ds.Field("x")
	require.NoError(t, err)
	require.Equal(t, ints(1, 2), values)
	require.False(t, ds.HasField("extra"))
}

func TestConcatMissingField(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"x": ints(1)})
	require.NoError(t, err)
	other, err := FromColumns(map[string][]any{"y": ints(2)})
	require.NoError(t, err)

	err = ds.Concat(other, nil)
	require.True(t, errors.IsType(err, errors.ErrorTypeSchema))
}

func TestConcatFailureLeavesReceiverUntouched(t *testing.T) {
	ds, err := FromColumns(map[string][]any{
		"a": ints(1, 2),
		"b": ints(3, 4),
	})
	require.NoError(t, err)
	other, err := FromColumns(map[string][]any{"a": ints(5)})
	require.NoError(t, err)

	err = ds.Concat(other, nil)
	require.True(t, errors.IsType(err, errors.ErrorTypeSchema))

	// No column may have been extended before the missing field was found.
	require.Equal(t, 2, ds.Len())
	values, err := ds.Field("a")
	require.NoError(t, err)
	require.Equal(t, ints(1, 2), values)
	values, err = ds.Field("b")
	require.NoError(t, err)
	require.Equal(t, ints(3, 4), values)
}

func TestFromInstances(t *testing.T) {
	ds, err := FromInstances([]Instance{
		{"x": 1, "y": "a"},
		{"x": 2, "y": "b"},
	})
	require.NoError(t, err)
	require.Equal(t, 2, ds.Len())

	_, err = FromInstances([]Instance{
		{"x": 1},
		{"y": 2},
	})
	require.True(t, errors.IsType(err, errors.ErrorTypeSchema))
	idx, ok := errors.RowIndex(err)
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

// padCollator pads a string field to a fixed width across the batch
type padCollator struct {
	field string
	width int
}

func (c padCollator) Collate(batch []Instance) (any, error) {
	out := make([]string, 0, len(batch))
	for _, ins := range batch {
		s, _ := ins[c.field].(string)
		for len(s) < c.width {
			s += " "
		}
		out = append(out, s)
	}
	return out, nil
}

func TestCollatorAttachment(t *testing.T) {
	ds, err := FromColumns(map[string][]any{"text": {"a", "bb"}})
	require.NoError(t, err)
	require.Empty(t, ds.Collators())

	ds.SetCollator(padCollator{field: "text", width: 4})
	ds.AddCollator(padCollator{field: "text", width: 8})
	require.Len(t, ds.Collators(), 2)

	// SetCollator replaces the whole chain.
	ds.SetCollator(padCollator{field: "text", width: 2})
	chain := ds.Collators()
	require.Len(t, chain, 1)

	batch := []Instance{{"text": "a"}, {"text": "bb"}}
	got, err := chain[0].Collate(batch)
	require.NoError(t, err)
	require.Equal(t, []string{"a ", "bb"}, got)
}
