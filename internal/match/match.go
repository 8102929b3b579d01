package match

import (
	"math"
	"sort"
	"strings"

	"github.com/labourhub/backend/internal/domain/job"
)

// neutralScore is assigned to jobs that list no required skills at all, so
// they rank between perfect and poor matches instead of disappearing.
const neutralScore = 50

const maxRecommendations = 5

type ScoredJob struct {
	job.Job
	MatchingSkills  []string `json:"matchingSkills"`
	MatchPercentage int      `json:"matchPercentage"`
}

// NormalizeSkills splits a comma-separated free-text skill list into trimmed,
// lowercased entries. Empty entries are dropped.
func NormalizeSkills(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}

	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}

// Recommend ranks open jobs for a worker by textual skill overlap and returns
// at most five, best match first. Ties keep their input order. It never fails:
// a worker with no skills simply scores 0 against any job with requirements.
func Recommend(workerSkills []string, openJobs []job.Job) []ScoredJob {
	scored := make([]ScoredJob, 0, len(openJobs))

	for _, j := range openJobs {
		required := NormalizeSkills(j.SkillsRequired)

		matched := matchingSkills(workerSkills, required)

		pct := neutralScore
		if len(required) > 0 {
			pct = int(math.Round(float64(len(matched)) / float64(len(required)) * 100))
		}

		scored = append(scored, ScoredJob{
			Job:             j,
			MatchingSkills:  matched,
			MatchPercentage: pct,
		})
	}

	sort.SliceStable(scored, func(i, k int) bool {
		return scored[i].MatchPercentage > scored[k].MatchPercentage
	})

	if len(scored) > maxRecommendations {
		scored = scored[:maxRecommendations]
	}

	return scored
}

// matchingSkills returns the worker skills that overlap a required skill in
// either direction: "plumb" matches "plumbing" and vice versa.
func matchingSkills(workerSkills, required []string) []string {
	matched := make([]string, 0, len(workerSkills))

	for _, ws := range workerSkills {
		for _, rs := range required {
			if strings.Contains(rs, ws) || strings.Contains(ws, rs) {
				matched = append(matched, ws)
				break
			}
		}
	}

	return matched
}
