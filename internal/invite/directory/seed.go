package directory

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	id "roster/pkg/domain"
)

// Importer accepts learner and group membership rows.
type Importer interface {
	ImportLearners(ctx context.Context, orgID id.OrgID, emails []string) error
	AddGroupMembers(ctx context.Context, orgID id.OrgID, groupID id.GroupID, emails []string) error
}

// TxRunner is implemented by importers that can apply a whole seed atomically.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SeedStats counts what a seed imported.
type SeedStats struct {
	Learners int
	Groups   int
}

type groupRef struct {
	org   id.OrgID
	group id.GroupID
}

// Seed imports rows of "org_id,email[,group_id]" from r. Every email becomes
// an org learner; rows with a group_id also join that group. A row with an
// empty email and a group_id creates an empty group. A leading header row
// starting with "org_id" is skipped.
func Seed(ctx context.Context, imp Importer, r io.Reader) (SeedStats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var (
		orgOrder   []id.OrgID
		learners   = map[id.OrgID][]string{}
		groupOrder []groupRef
		members    = map[groupRef][]string{}
	)
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return SeedStats{}, fmt.Errorf("read seed: %w", err)
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(record[0]), "org_id") {
			continue
		}
		if len(record) < 2 {
			return SeedStats{}, fmt.Errorf("seed line %d: expected org_id,email[,group_id]", line)
		}

		orgID, err := id.ParseOrgID(record[0])
		if err != nil {
			return SeedStats{}, fmt.Errorf("seed line %d: %w", line, err)
		}
		email := strings.TrimSpace(record[1])
		if email != "" {
			if _, seen := learners[orgID]; !seen {
				orgOrder = append(orgOrder, orgID)
			}
			learners[orgID] = append(learners[orgID], email)
		}

		if len(record) < 3 || strings.TrimSpace(record[2]) == "" {
			continue
		}
		groupID, err := id.ParseGroupID(record[2])
		if err != nil {
			return SeedStats{}, fmt.Errorf("seed line %d: %w", line, err)
		}
		ref := groupRef{org: orgID, group: groupID}
		if _, seen := members[ref]; !seen {
			groupOrder = append(groupOrder, ref)
			members[ref] = []string{}
		}
		if email != "" {
			members[ref] = append(members[ref], email)
		}
	}

	var stats SeedStats
	apply := func(ctx context.Context) error {
		for _, orgID := range orgOrder {
			if err := imp.ImportLearners(ctx, orgID, learners[orgID]); err != nil {
				return err
			}
			stats.Learners += len(learners[orgID])
		}
		for _, ref := range groupOrder {
			if err := imp.AddGroupMembers(ctx, ref.org, ref.group, members[ref]); err != nil {
				return err
			}
			stats.Groups++
		}
		return nil
	}

	if txr, ok := imp.(TxRunner); ok {
		if err := txr.RunInTx(ctx, apply); err != nil {
			return SeedStats{}, err
		}
		return stats, nil
	}
	if err := apply(ctx); err != nil {
		return SeedStats{}, err
	}
	return stats, nil
}
