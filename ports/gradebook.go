package ports

import (
	"context"

	"gokundoluk/domain/gradebook"
)

// SubjectDiscoveryPort lists the subjects that exist for a class and quarter
type SubjectDiscoveryPort interface {
	ListSubjects(ctx context.Context, class gradebook.ClassRef, quarter int) ([]gradebook.SubjectLink, error)
}

// SubjectSourcePort retrieves one subject table. A failed retrieval returns an
// error wrapping core.ErrSubjectFetch; it never retries.
type SubjectSourcePort interface {
	FetchSubject(ctx context.Context, link gradebook.SubjectLink) (gradebook.Subject, error)
}

// GradebookPort is the remote gradebook as a whole
type GradebookPort interface {
	SubjectDiscoveryPort
	SubjectSourcePort
}
