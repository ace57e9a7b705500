// Package policy holds the role and ownership rules shared by services and middleware.
// Nothing here touches the store.
package policy

import (
	"fmt"
	"strings"

	"anoa.com/coursemarket/internal/entity"
	"anoa.com/coursemarket/pkg/apperror"
)

// EnsureRole fails with ErrUnauthorized for a nil user and ErrForbidden when the role is not allowed.
func EnsureRole(user *entity.User, allowed ...string) error {
	if user == nil {
		return fmt.Errorf("authentication required: %w", apperror.ErrUnauthorized)
	}
	if !user.HasRole(allowed...) {
		return fmt.Errorf("requires role %s: %w", strings.Join(allowed, " or "), apperror.ErrForbidden)
	}
	return nil
}

// IsCourseOwner reports whether the creator profile owns the course.
func IsCourseOwner(creator *entity.Creator, course *entity.Course) bool {
	return creator != nil && course != nil && creator.ID == course.CreatorID
}

// EnsureCourseOwner lets admins through; everyone else must own the course.
func EnsureCourseOwner(user *entity.User, creator *entity.Creator, course *entity.Course) error {
	if user == nil {
		return fmt.Errorf("authentication required: %w", apperror.ErrUnauthorized)
	}
	if user.IsAdmin() {
		return nil
	}
	if !IsCourseOwner(creator, course) {
		return fmt.Errorf("you do not own this course: %w", apperror.ErrForbidden)
	}
	return nil
}

// CanViewCourse: published courses are public, drafts are visible to their owner and admins.
func CanViewCourse(user *entity.User, creator *entity.Creator, course *entity.Course) bool {
	if course == nil {
		return false
	}
	if course.IsPublished {
		return true
	}
	if user == nil {
		return false
	}
	return user.IsAdmin() || IsCourseOwner(creator, course)
}
