package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileBase(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain class", "libsemigroups::Action", "libsemigroups__action"},
		{"call operator", "Action::operator()", "action__call_operator"},
		{"star", "operator*", "operator_star"},
		{"star with space", "operator *", "operator_star"},
		{"not equal", "operator!=", "operator_not_eq"},
		{"equal to", "operator==", "operator_equal_to"},
		{"insertion", "operator<<", "insertion_operator"},
		{"trailing less-than", "operator<", "operator_less"},
		{"greater", "operator>", "operator_greater"},
		{"signature", "add_seed(const_reference)", "add_seed_const_reference_"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FileBase(tt.in))
		})
	}
}

func TestFileBaseIdempotent(t *testing.T) {
	inputs := []string{
		"libsemigroups::Action::operator<<",
		"FroidurePin<TElementType>::word_to_element",
		"operator!=",
		"run_until(bool(*)())",
	}
	for _, in := range inputs {
		once := FileBase(in)
		assert.Equal(t, once, FileBase(once), "FileBase not idempotent for %q", in)
	}
}

func TestOverviewAndSubpageFile(t *testing.T) {
	assert.Equal(t, "out/libsemigroups__action.rst", OverviewFile("out", "libsemigroups::Action"))
	assert.Equal(t, "out/action__member_types.rst", SubpageFile("out", "Action", "Member types"))
}

func TestStripNamespace(t *testing.T) {
	assert.Equal(t, "Action", StripNamespace("libsemigroups", "libsemigroups::Action"))
	assert.Equal(t, "other::Action", StripNamespace("libsemigroups", "other::Action"))
	assert.Equal(t, "", StripNamespace("libsemigroups", ""))
	// Only a full leading segment is stripped.
	assert.Equal(t, "libsemigroupsx::Action", StripNamespace("libsemigroups", "libsemigroupsx::Action"))
}

func TestUnqualified(t *testing.T) {
	assert.Equal(t, "size", Unqualified("libsemigroups::Action::size"))
	assert.Equal(t, "size", Unqualified("size"))
	assert.Equal(t, "", Unqualified(""))
}
