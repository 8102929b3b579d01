package match

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/labourhub/backend/internal/domain/job"
)

func jobWithSkills(id, skills string) job.Job {
	return job.Job{
		ID:             id,
		Title:          "job " + id,
		SkillsRequired: skills,
		Status:         job.StatusOpen,
	}
}

func TestNormalizeSkills(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{name: "empty", in: "", want: nil},
		{name: "whitespace_only", in: "   ", want: nil},
		{name: "basic", in: "Plumbing, Carpentry", want: []string{"plumbing", "carpentry"}},
		{name: "messy", in: " plumbing ,, ,CARPENTRY ", want: []string{"plumbing", "carpentry"}},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeSkills(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("NormalizeSkills(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRecommendBidirectionalSubstring(t *testing.T) {
	// "plumbing" must match required skill "plumb" and the other way around
	got := Recommend([]string{"plumbing"}, []job.Job{jobWithSkills("a", "plumb, paint")})

	if len(got) != 1 {
		t.Fatalf("expected 1 scored job, got %d", len(got))
	}

	if !reflect.DeepEqual(got[0].MatchingSkills, []string{"plumbing"}) {
		t.Fatalf("unexpected matching skills: %v", got[0].MatchingSkills)
	}

	// 1 of 2 required skills matched
	if got[0].MatchPercentage != 50 {
		t.Fatalf("expected 50%%, got %d%%", got[0].MatchPercentage)
	}
}

func TestRecommendNeutralScoreForEmptyRequirements(t *testing.T) {
	workers := [][]string{
		nil,
		{"plumbing"},
		{"plumbing", "carpentry", "painting"},
	}

	for _, skills := range workers {
		got := Recommend(skills, []job.Job{jobWithSkills("a", "")})

		if len(got) != 1 || got[0].MatchPercentage != 50 {
			t.Fatalf("job with no requirements must always score 50, got %+v", got)
		}
	}
}

func TestRecommendWorkerWithNoSkills(t *testing.T) {
	got := Recommend(nil, []job.Job{
		jobWithSkills("a", "plumbing"),
		jobWithSkills("b", ""),
	})

	if len(got) != 2 {
		t.Fatalf("expected 2 scored jobs, got %d", len(got))
	}

	// empty-requirement job (50) outranks the unmatched one (0)
	if got[0].ID != "b" || got[0].MatchPercentage != 50 {
		t.Fatalf("expected neutral job first, got %+v", got[0])
	}
	if got[1].ID != "a" || got[1].MatchPercentage != 0 {
		t.Fatalf("expected zero score for unmatched job, got %+v", got[1])
	}
	if len(got[1].MatchingSkills) != 0 {
		t.Fatalf("expected no matching skills, got %v", got[1].MatchingSkills)
	}
}

func TestRecommendReturnsAtMostFiveSorted(t *testing.T) {
	jobs := make([]job.Job, 0, 8)

	for i := 0; i < 8; i++ {
		// alternate between well-matching and non-matching jobs
		skills := "cleaning"
		if i%2 == 0 {
			skills = "plumbing"
		}
		jobs = append(jobs, jobWithSkills(fmt.Sprintf("j%d", i), skills))
	}

	got := Recommend([]string{"plumbing"}, jobs)

	if len(got) != 5 {
		t.Fatalf("expected 5 recommendations, got %d", len(got))
	}

	for i := 1; i < len(got); i++ {
		if got[i-1].MatchPercentage < got[i].MatchPercentage {
			t.Fatalf("results not sorted by match percentage: %d%% before %d%%",
				got[i-1].MatchPercentage, got[i].MatchPercentage)
		}
	}
}

func TestRecommendTiesKeepInputOrder(t *testing.T) {
	jobs := []job.Job{
		jobWithSkills("first", "plumbing"),
		jobWithSkills("second", "plumbing"),
		jobWithSkills("third", "plumbing"),
	}

	got := Recommend([]string{"plumbing"}, jobs)

	wantOrder := []string{"first", "second", "third"}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Fatalf("tie order broken at %d: got %s want %s", i, got[i].ID, want)
		}
	}
}

func TestRecommendRounding(t *testing.T) {
	// 1 of 3 required skills -> 33.33 -> 33; 2 of 3 -> 66.67 -> 67
	got := Recommend([]string{"plumbing"}, []job.Job{jobWithSkills("a", "plumbing, painting, tiling")})
	if got[0].MatchPercentage != 33 {
		t.Fatalf("expected 33%%, got %d%%", got[0].MatchPercentage)
	}

	got = Recommend([]string{"plumbing", "painting"}, []job.Job{jobWithSkills("a", "plumbing, painting, tiling")})
	if got[0].MatchPercentage != 67 {
		t.Fatalf("expected 67%%, got %d%%", got[0].MatchPercentage)
	}
}
