package service

import (
	"context"
	"errors"

	"salesorch_backend/internal/campaigns/repository"
	"salesorch_backend/platform/apperr"

	"github.com/google/uuid"
)

type Service struct {
	repo *repository.Repository
}

func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID) ([]repository.Campaign, error) {
	return s.repo.ListCampaigns(ctx, orgID)
}

func (s *Service) Create(ctx context.Context, orgID uuid.UUID, name string) (repository.Campaign, error) {
	return s.repo.CreateCampaign(ctx, orgID, name)
}

func (s *Service) Update(ctx context.Context, orgID, campaignID uuid.UUID, name string) (repository.Campaign, error) {
	campaign, err := s.repo.UpdateCampaign(ctx, orgID, campaignID, name)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Campaign{}, apperr.NotFound("campaign not found")
	}
	return campaign, err
}

func (s *Service) Delete(ctx context.Context, orgID, campaignID uuid.UUID) error {
	err := s.repo.DeleteCampaign(ctx, orgID, campaignID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("campaign not found")
	}
	return err
}

// ListSteps returns the steps of a campaign after verifying org ownership.
func (s *Service) ListSteps(ctx context.Context, orgID, campaignID uuid.UUID) ([]repository.SequenceStep, error) {
	if _, err := s.campaignForOrg(ctx, orgID, campaignID); err != nil {
		return nil, err
	}
	return s.repo.ListSteps(ctx, campaignID)
}

func (s *Service) CreateStep(ctx context.Context, orgID uuid.UUID, step repository.SequenceStep) (repository.SequenceStep, error) {
	if !step.Action.Valid() {
		return repository.SequenceStep{}, apperr.Validation("unknown step action")
	}
	if _, err := s.campaignForOrg(ctx, orgID, step.CampaignID); err != nil {
		return repository.SequenceStep{}, err
	}
	return s.repo.CreateStep(ctx, step)
}

func (s *Service) UpdateStep(ctx context.Context, orgID uuid.UUID, stepID uuid.UUID, order *int, action *repository.StepAction, waitDays *int) (repository.SequenceStep, error) {
	step, err := s.repo.GetStep(ctx, orgID, stepID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.SequenceStep{}, apperr.NotFound("sequence step not found")
	}
	if err != nil {
		return repository.SequenceStep{}, err
	}

	if order != nil {
		step.Order = *order
	}
	if action != nil {
		if !action.Valid() {
			return repository.SequenceStep{}, apperr.Validation("unknown step action")
		}
		step.Action = *action
	}
	if waitDays != nil {
		step.WaitDays = *waitDays
	}
	return s.repo.UpdateStep(ctx, step)
}

func (s *Service) DeleteStep(ctx context.Context, orgID, stepID uuid.UUID) error {
	err := s.repo.DeleteStep(ctx, orgID, stepID)
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("sequence step not found")
	}
	return err
}

func (s *Service) campaignForOrg(ctx context.Context, orgID, campaignID uuid.UUID) (repository.Campaign, error) {
	campaign, err := s.repo.GetCampaign(ctx, orgID, campaignID)
	if errors.Is(err, repository.ErrNotFound) {
		return repository.Campaign{}, apperr.NotFound("campaign not found")
	}
	return campaign, err
}
