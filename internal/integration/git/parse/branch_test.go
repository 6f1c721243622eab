package parse

import "testing"

func TestBranches(t *testing.T) {
	branches := Branches("*\tmain\trefs/heads/main\n \torigin/main\trefs/remotes/origin/main\n")

	if len(branches) != 2 {
		t.Fatalf("expected 2 branches, got %d", len(branches))
	}

	main := branches[0]
	if !main.IsCurrent || main.IsRemote {
		t.Errorf("expected current local main, got %+v", main)
	}
	if main.ShortName != "main" {
		t.Errorf("expected short name main, got %q", main.ShortName)
	}

	remote := branches[1]
	if !remote.IsRemote || remote.Remote != "origin" || remote.ShortName != "main" {
		t.Errorf("expected origin/main remote entry, got %+v", remote)
	}
	if remote.IsCurrent {
		t.Error("remote branch must not be current")
	}
}

func TestBranchesOrderingAndFiltering(t *testing.T) {
	input := " \torigin/HEAD\trefs/remotes/origin/HEAD\n" +
		" \tupstream/zeta\trefs/remotes/upstream/zeta\n" +
		" \tfeature/x\trefs/heads/feature/x\n" +
		"*\tdev\trefs/heads/dev\n" +
		"*\tbogus\trefs/heads/bogus\n" +
		"broken line\n"

	branches := Branches(input)
	want := []string{"bogus", "dev", "feature/x", "upstream/zeta"}
	if len(branches) != len(want) {
		t.Fatalf("expected %d branches, got %+v", len(want), branches)
	}
	for i, name := range want {
		if branches[i].Name != name {
			t.Errorf("position %d: expected %s, got %s", i, name, branches[i].Name)
		}
	}

	current := 0
	for _, b := range branches {
		if b.IsCurrent {
			current++
		}
	}
	if current != 1 {
		t.Errorf("expected exactly one current branch, got %d", current)
	}

	cur, ok := CurrentBranch(branches)
	if !ok || cur.Name != "dev" {
		t.Errorf("expected dev current, got %+v", cur)
	}
	if branches[2].ShortName != "feature/x" {
		t.Errorf("expected slash kept in local short name, got %q", branches[2].ShortName)
	}
}
