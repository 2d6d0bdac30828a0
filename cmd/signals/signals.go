package signals

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"signalbridge/src/app"
	"signalbridge/src/store"
)

// Signals prints the content of the configured store.
type Signals struct {
	Unprocessed bool
	Out         io.Writer
}

func (s *Signals) Start() error {
	st, closeStore, err := app.NewStore()
	if err != nil {
		return err
	}
	defer closeStore()

	return s.print(context.Background(), st)
}

func (s *Signals) print(ctx context.Context, st store.Store) error {
	out := s.Out
	if out == nil {
		out = os.Stdout
	}

	all, err := st.ReadAll(ctx)
	if err != nil {
		return err
	}
	if s.Unprocessed {
		all = store.Unprocessed(all)
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tTIME\tSOURCE\tPROCESSED\tSIGNAL")
	for _, sig := range all {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n",
			sig.ID, sig.Timestamp.Format("2006-01-02 15:04:05"), sig.Source, sig.IsProcessed, sig)
	}
	return w.Flush()
}
