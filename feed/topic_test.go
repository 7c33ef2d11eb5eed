package feed

import "testing"

func TestTopics_DeterministicAndDistinct(t *testing.T) {
	if TopicEditions("s1", 0) != TopicFromString("woco/pod/editions/s1") {
		t.Fatalf("editions page 0 must use the base topic string")
	}
	if TopicEditions("s1", 1) != TopicFromString("woco/pod/editions/s1/p1") {
		t.Fatalf("editions page 1 must use the /p1 suffix")
	}
	if TopicClaims("s1", 0) == TopicEditions("s1", 0) {
		t.Fatalf("claims and editions topics collide")
	}
	if TopicEditions("s1", 0) == TopicEditions("s2", 0) {
		t.Fatalf("series topics collide")
	}
	if TopicEventDirectory() != TopicFromString("woco/event/directory") {
		t.Fatalf("directory topic drifted")
	}
}

func TestTopicUserCollection_Lowercases(t *testing.T) {
	a := TopicUserCollection("0xABCDEF0123456789abcdef0123456789ABCDEF01")
	b := TopicUserCollection("0xabcdef0123456789abcdef0123456789abcdef01")
	if a != b {
		t.Fatalf("collection topic must be case-insensitive on the address")
	}
}

func TestPageCount(t *testing.T) {
	cases := []struct{ supply, want int }{
		{1, 1},
		{127, 1},
		{128, 2},
		{254, 2},
		{255, 3},
		{256, 3},
	}
	for _, c := range cases {
		if got := PageCount(c.supply); got != c.want {
			t.Errorf("PageCount(%d) = %d, want %d", c.supply, got, c.want)
		}
	}
}

func TestEditionNumber(t *testing.T) {
	cases := []struct{ page, slot, want int }{
		{0, 1, 1},
		{0, 127, 127},
		{1, 0, 128},
		{1, 127, 255},
		{2, 0, 256},
	}
	for _, c := range cases {
		if got := EditionNumber(c.page, c.slot); got != c.want {
			t.Errorf("EditionNumber(%d, %d) = %d, want %d", c.page, c.slot, got, c.want)
		}
	}
}
