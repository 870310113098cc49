package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"moneypaz/internal/core"
	"moneypaz/internal/log"
)

const missingEmail = "Sin email"

var (
	ErrNotAdmin     = errors.New("requester is not an admin")
	ErrSelfDeletion = errors.New("admins cannot delete themselves")
)

// AdminRepository is the relational store behind the admin tooling.
type AdminRepository interface {
	ListUserSummaries(ctx context.Context) ([]core.UserSummary, error)
	IsAdmin(ctx context.Context, userID string) (bool, error)
	// DeleteUser removes the user's movements, then roles, then profile.
	DeleteUser(ctx context.Context, userID string) error
}

// AdminService lists, exports and deletes users.
type AdminService struct {
	repo   AdminRepository
	logger *log.Logger
	now    func() time.Time
}

func NewAdminService(repo AdminRepository, logger *log.Logger) *AdminService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &AdminService{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentAdmin),
		now:    time.Now,
	}
}

// ListUsers returns every profile with its total mirrored expenses.
func (s *AdminService) ListUsers(ctx context.Context) ([]core.UserSummary, error) {
	users, err := s.repo.ListUserSummaries(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	for i := range users {
		if users[i].Email == "" {
			users[i].Email = missingEmail
		}
	}
	return users, nil
}

// AdminExport is the JSON document produced by ExportUsers.
type AdminExport struct {
	ExportDate string            `json:"exportDate"`
	TotalUsers int               `json:"totalUsers"`
	Users      []AdminExportUser `json:"users"`
}

type AdminExportUser struct {
	Email         string `json:"email"`
	DisplayName   string `json:"displayName"`
	RegisteredAt  string `json:"registeredAt"`
	TotalExpenses string `json:"totalExpenses"`
}

// BuildAdminExport converts user summaries to the export document.
func BuildAdminExport(users []core.UserSummary, now time.Time) AdminExport {
	out := AdminExport{
		ExportDate: core.FormatMovementDate(now),
		TotalUsers: len(users),
		Users:      make([]AdminExportUser, 0, len(users)),
	}
	for _, u := range users {
		out.Users = append(out.Users, AdminExportUser{
			Email:         u.Email,
			DisplayName:   u.DisplayName,
			RegisteredAt:  u.CreatedAt.UTC().Format(time.RFC3339),
			TotalExpenses: core.FormatAmount(u.TotalExpenses),
		})
	}
	return out
}

// ExportUsers writes the indented admin export to w.
func (s *AdminService) ExportUsers(ctx context.Context, w io.Writer) error {
	users, err := s.ListUsers(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(BuildAdminExport(users, s.now())); err != nil {
		return fmt.Errorf("write admin export: %w", err)
	}
	s.logger.InfoContext(ctx, "Exported users", log.FieldOperation, log.OpExport, "total_users", len(users))
	return nil
}

// DeleteUser removes a user and everything mirrored for them. The requester
// must be an admin and cannot remove their own account.
func (s *AdminService) DeleteUser(ctx context.Context, requesterID, userID string) error {
	if requesterID == userID {
		return ErrSelfDeletion
	}
	ok, err := s.repo.IsAdmin(ctx, requesterID)
	if err != nil {
		return fmt.Errorf("check admin role: %w", err)
	}
	if !ok {
		return ErrNotAdmin
	}
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		return fmt.Errorf("delete user %s: %w", userID, err)
	}
	s.logger.InfoContext(ctx, "Deleted user",
		log.FieldOperation, log.OpDelete,
		log.FieldUserID, userID,
		"requested_by", requesterID)
	return nil
}
