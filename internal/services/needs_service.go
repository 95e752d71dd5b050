package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/SAP-F-2025/skill-tracker/internal/models"
	"github.com/SAP-F-2025/skill-tracker/internal/syncer"
	"github.com/SAP-F-2025/skill-tracker/internal/validator"
)

type needsService struct {
	base
}

func NewNeedsService(deps Dependencies) NeedsService {
	return &needsService{base: newBase(deps)}
}

func findNeedsPeriod(h *models.Hospital, month string, year int) *models.MonthlyNeedsAssessment {
	for i := range h.NeedsAssessments {
		if h.NeedsAssessments[i].Month == month && h.NeedsAssessments[i].Year == year {
			return &h.NeedsAssessments[i]
		}
	}
	return nil
}

func findTopic(period *models.MonthlyNeedsAssessment, topicID string) *models.NeedsAssessmentTopic {
	if period == nil {
		return nil
	}
	for i := range period.Topics {
		if period.Topics[i].ID == topicID {
			return &period.Topics[i]
		}
	}
	return nil
}

// UpsertNeedsTopic adds or edits a survey topic in the hospital's needs
// assessment for the given month and year. Responses of an existing topic
// are kept.
func (s *needsService) UpsertNeedsTopic(ctx context.Context, hospitalID, month string, year int, topic *models.NeedsAssessmentTopic) error {
	errs := s.validator.GetBusinessValidator().ValidatePeriod(month, year)
	if strings.TrimSpace(topic.Title) == "" {
		errs = append(errs, validator.ValidationError{Field: "title", Message: "is required", Rule: "required"})
	}
	if len(errs) > 0 {
		return errs
	}
	if topic.ID == "" {
		topic.ID = newID()
	}
	incoming := *topic

	return s.mutate(ctx, "upsert needs topic", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		period := findNeedsPeriod(h, month, year)
		if period == nil {
			h.NeedsAssessments = append(h.NeedsAssessments, models.MonthlyNeedsAssessment{Month: month, Year: year})
			period = &h.NeedsAssessments[len(h.NeedsAssessments)-1]
		}
		if existing := findTopic(period, incoming.ID); existing != nil {
			existing.Title = incoming.Title
			existing.Description = incoming.Description
			return nil
		}
		period.Topics = append(period.Topics, incoming)
		return nil
	})
}

func (s *needsService) DeleteNeedsTopic(ctx context.Context, hospitalID, month string, year int, topicID string) error {
	return s.mutate(ctx, "delete needs topic", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		period := findNeedsPeriod(h, month, year)
		if period == nil {
			return fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
		}
		var ok bool
		period.Topics, ok = removeByID(period.Topics, topicID, func(t *models.NeedsAssessmentTopic) string { return t.ID })
		if !ok {
			return fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
		}
		return nil
	})
}

// SubmitNeedsResponse records a staff member's answer to a topic. A staff
// member has at most one response per topic; resubmitting replaces it.
func (s *needsService) SubmitNeedsResponse(ctx context.Context, hospitalID, month string, year int, topicID string, resp models.TopicResponse) error {
	if resp.StaffID == "" {
		return validator.ValidationErrors{{Field: "staffId", Message: "is required", Rule: "required"}}
	}
	resp.SubmittedAt = s.timestamp()

	return s.mutate(ctx, "submit needs response", nil, func(ds *models.Dataset, _ *syncer.Change) error {
		h, err := findHospital(ds, hospitalID)
		if err != nil {
			return err
		}
		topic := findTopic(findNeedsPeriod(h, month, year), topicID)
		if topic == nil {
			return fmt.Errorf("%w: %s", ErrTopicNotFound, topicID)
		}
		for i := range topic.Responses {
			if topic.Responses[i].StaffID == resp.StaffID {
				topic.Responses[i] = resp
				return nil
			}
		}
		topic.Responses = append(topic.Responses, resp)
		return nil
	})
}
