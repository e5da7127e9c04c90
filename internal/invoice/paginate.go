package invoice

// Row capacities of the A4 layout drawn by Render. The first page loses
// rows to the company and contact header.
const (
	FirstPageRows = 26
	OtherPageRows = 34

	// TotalsBlockRows is how many item rows the totals block takes up
	TotalsBlockRows = 6
)

// Page is the half-open range [Start, End) of item rows printed on one
// page. Totals marks the page that carries the totals block.
type Page struct {
	Start  int
	End    int
	Totals bool
}

// Paginate splits rows over pages holding firstPage rows on the first page
// and otherPages rows after that. The totals block goes under the last
// rows when it fits, otherwise onto an extra page of its own.
func Paginate(rows, firstPage, otherPages int) []Page {
	if firstPage < 1 {
		firstPage = 1
	}
	if otherPages < 1 {
		otherPages = 1
	}

	var pages []Page
	start, capacity := 0, firstPage
	for {
		end := min(start+capacity, rows)
		pages = append(pages, Page{Start: start, End: end})
		start = end
		if start >= rows {
			break
		}
		capacity = otherPages
	}

	last := &pages[len(pages)-1]
	lastCapacity := otherPages
	if len(pages) == 1 {
		lastCapacity = firstPage
	}
	if last.End-last.Start+TotalsBlockRows <= lastCapacity {
		last.Totals = true
	} else {
		pages = append(pages, Page{Start: rows, End: rows, Totals: true})
	}
	return pages
}
