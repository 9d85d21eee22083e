package store

import "testing"

func TestAddIsIdempotentByTupleEquality(t *testing.T) {
	s := New()
	s.Add(Triple{"ex:a", "ex:p", "1"})
	s.Add(Triple{"ex:a", "ex:p", "1"})
	if s.Len() != 1 {
		t.Fatalf("got %d triples, want 1", s.Len())
	}
}

func TestMatchWildcards(t *testing.T) {
	s := New()
	s.Add(Triple{"ex:a", "ex:p", "1"})
	s.Add(Triple{"ex:a", "ex:q", "2"})
	s.Add(Triple{"ex:b", "ex:p", "3"})

	subj := "ex:a"
	got := s.Match(&subj, nil, nil)
	if len(got) != 2 {
		t.Fatalf("got %d matches, want 2", len(got))
	}
}
