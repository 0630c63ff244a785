package styles

import "testing"

func TestStatusIcon(t *testing.T) {
	tests := map[string]string{
		"locked":   IconLocked,
		"out":      IconOut,
		"unlocked": IconUnlocked,
		"":         IconUnknown,
	}
	for status, want := range tests {
		if got := StatusIcon(status); got != want {
			t.Errorf("StatusIcon(%q) = %q, want %q", status, got, want)
		}
	}
}

func TestOwnerStyle(t *testing.T) {
	if OwnerStyle(true).GetForeground() != OwnerSelf {
		t.Error("own checkouts should use OwnerSelf")
	}
	if OwnerStyle(false).GetForeground() != OwnerOther {
		t.Error("other owners should use OwnerOther")
	}
}

func TestStatusStyle(t *testing.T) {
	if StatusStyle("locked").GetForeground() != StatusLocked {
		t.Error("locked should use StatusLocked")
	}
	if StatusStyle("unlocked").GetForeground() != StatusUnlocked {
		t.Error("unlocked should use StatusUnlocked")
	}
}
