package repository

import (
	"context"
	"testing"

	"github.com/alexanderramin/atelier/internal/domain"
	"github.com/alexanderramin/atelier/internal/testutil"
	"pgregory.net/rapid"
)

func drawText(t *rapid.T, label string) string {
	return rapid.StringMatching(`[ ]{0,2}[A-Za-z0-9][A-Za-z0-9 ]{0,15}`).Draw(t, label)
}

func drawBlank(t *rapid.T, label string) string {
	return rapid.StringMatching(`[ \t\n\r]{0,6}`).Draw(t, label)
}

// TestProperty_CreateAddsExactlyOne checks that any non-blank note text
// grows the scoped list by one and round-trips unchanged.
func TestProperty_CreateAddsExactlyOne(t *testing.T) {
	for _, v := range variants()[:2] {
		t.Run(v.name, func(t *testing.T) {
			repo := v.newRepo(t)
			seeded := testutil.SeedClient(t, repo, "Alice", testutil.WithInstrument("Violin"))
			violin := seeded.Instruments[0]
			ctx := context.Background()

			rapid.Check(t, func(rt *rapid.T) {
				text := drawText(rt, "text")
				before, err := repo.ListChildren(ctx, domain.KindNote, violin.ID)
				if err != nil {
					rt.Fatalf("list: %v", err)
				}
				created, err := repo.Create(ctx, domain.KindNote, violin.ID, text)
				if err != nil {
					rt.Fatalf("create %q: %v", text, err)
				}
				after, err := repo.ListChildren(ctx, domain.KindNote, violin.ID)
				if err != nil {
					rt.Fatalf("list: %v", err)
				}
				if len(after) != len(before)+1 {
					rt.Fatalf("expected %d notes, got %d", len(before)+1, len(after))
				}
				if after[0].ID != created.ID || after[0].Text != text {
					rt.Fatalf("newest note = %+v, want id %s text %q", after[0], created.ID, text)
				}
			})
		})
	}
}

// TestProperty_BlankCreateLeavesCollectionUnchanged checks every
// whitespace-only payload is rejected without a write.
func TestProperty_BlankCreateLeavesCollectionUnchanged(t *testing.T) {
	for _, v := range variants()[:2] {
		t.Run(v.name, func(t *testing.T) {
			repo := v.newRepo(t)
			testutil.SeedClient(t, repo, "Alice")
			ctx := context.Background()

			rapid.Check(t, func(rt *rapid.T) {
				blank := drawBlank(rt, "blank")
				_, err := repo.Create(ctx, domain.KindClient, "", blank)
				if err == nil {
					rt.Fatalf("blank %q accepted", blank)
				}
				clients, err := repo.ListChildren(ctx, domain.KindClient, "")
				if err != nil {
					rt.Fatalf("list: %v", err)
				}
				if len(clients) != 1 {
					rt.Fatalf("collection changed: %d clients", len(clients))
				}
			})
		})
	}
}
