package analytics

import (
	"context"

	"github.com/okian/engage/internal/domain/types"
)

const exportDate = "2006-01-02"

// Export returns the filtered records, sorted by person then time, with derived
// per-person columns. The first column is headed by the filter description and left blank.
func (e *Engine) Export(ctx context.Context, s Settings) (types.Table, error) {
	if err := ctx.Err(); err != nil {
		return types.Table{}, err
	}
	r, err := e.prepare(s)
	if err != nil {
		return types.Table{}, err
	}

	cols := []string{
		r.description, "Email", "Unique ID", "Event Type Name", "Engagement Type",
		"Events Start Date Date", "Semester", "Class Level", "Graduation Semester", "Majors",
	}
	cols = append(cols, e.data.ExtraColumns...)
	cols = append(cols, "First Engagement?", "Last Engagement?", "Student's Number of Engagements", "Known Graduate?")

	graduates := e.data.KnownGraduates()
	out := types.Table{Columns: cols, Rows: make([][]any, 0, len(r.records))}
	for _, g := range r.groups {
		_, known := graduates[g.PersonID]
		for i, rec := range g.Records {
			row := make([]any, 0, len(cols))
			row = append(row, "", rec.PersonID, rec.UniqueID, rec.EventType, rec.Category,
				rec.TS.Format(exportDate), rec.Semester, rec.ClassLevel, rec.GraduationLabel, rec.MajorsLabel())
			for _, c := range e.data.ExtraColumns {
				row = append(row, rec.Extra[c])
			}
			row = append(row, yesNo(g.IsFirst(i)), yesNo(g.IsLast(i)), len(g.Records), graduateLabel(known))
			out.Rows = append(out.Rows, row)
		}
	}
	return out, nil
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func graduateLabel(known bool) string {
	if known {
		return "Graduate"
	}
	return "Not Graduate"
}
