package feedback

import (
	"context"
	"fmt"
	"math"

	"github.com/emilythestrangee/feedback-board/backend/internal/models"
)

type RoadmapColumn struct {
	Status models.Status `json:"status"`
	Title  string        `json:"title"`
	Count  int           `json:"count"`
	Posts  []models.Post `json:"posts"`
}

type Roadmap struct {
	Columns           []RoadmapColumn `json:"columns"`
	TotalPosts        int             `json:"total_posts"`
	TotalVotes        int64           `json:"total_votes"`
	AverageVotes      int64           `json:"average_votes"`
	CompletedPercent  int             `json:"completed_percent"`
	InProgressPercent int             `json:"in_progress_percent"`
	PlannedPercent    int             `json:"planned_percent"`
}

// Roadmap returns every post grouped by status, most voted first.
func (s *Service) Roadmap(ctx context.Context, viewer *models.User) (*Roadmap, error) {
	posts := []models.Post{}
	err := s.postsQuery(ctx, viewer).
		Order("vote_count DESC, posts.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("load roadmap: %w", err)
	}
	return BuildRoadmap(posts), nil
}

// BuildRoadmap groups posts into one column per status, keeping their order,
// and computes the summary figures. Percentages and the average are rounded
// to the nearest integer and are zero when there are no posts.
func BuildRoadmap(posts []models.Post) *Roadmap {
	rm := &Roadmap{Columns: make([]RoadmapColumn, len(models.Statuses))}

	index := make(map[models.Status]int, len(models.Statuses))
	for i, st := range models.Statuses {
		rm.Columns[i] = RoadmapColumn{Status: st, Title: st.Label(), Posts: []models.Post{}}
		index[st] = i
	}

	for _, p := range posts {
		i, ok := index[p.Status]
		if !ok {
			continue
		}
		rm.Columns[i].Posts = append(rm.Columns[i].Posts, p)
		rm.Columns[i].Count++
		rm.TotalPosts++
		rm.TotalVotes += p.VoteCount
	}

	if rm.TotalPosts == 0 {
		return rm
	}

	rm.AverageVotes = int64(math.Round(float64(rm.TotalVotes) / float64(rm.TotalPosts)))
	rm.CompletedPercent = percent(rm.Columns[index[models.StatusCompleted]].Count, rm.TotalPosts)
	rm.InProgressPercent = percent(rm.Columns[index[models.StatusInProgress]].Count, rm.TotalPosts)
	rm.PlannedPercent = percent(rm.Columns[index[models.StatusPlanned]].Count, rm.TotalPosts)

	return rm
}

func percent(n, total int) int {
	return int(math.Round(float64(n) * 100 / float64(total)))
}
