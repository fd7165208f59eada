package querybuilder

import (
	"strings"
	"testing"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("public_id", "home_team").
		From("matches").
		Where(Eq("league_id", "4689"), IsNull("external_match_id")).
		OrderBy("match_date", "id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT public_id, home_team FROM matches WHERE league_id = $1 AND external_match_id IS NULL ORDER BY match_date, id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "4689" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ILikeAndOffset(t *testing.T) {
	query, args, err := Select("player_name").
		From("player_season_stats").
		Where(Eq("season", "2025"), ILike("player_name", "%"+EscapeLike("jo_")+"%")).
		Limit(20).
		Offset(40).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT player_name FROM player_season_stats WHERE season = $1 AND player_name ILIKE $2 LIMIT 20 OFFSET 40"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[1] != `%jo\_%` {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestCountBuilder(t *testing.T) {
	query, args, err := Count().
		From("matches").
		Where(Eq("league_id", "4689"), Eq("season", "2025"), IsNotNull("external_match_id")).
		ToSQL()
	if err != nil {
		t.Fatalf("build count query: %v", err)
	}

	wantQuery := "SELECT COUNT(*) FROM matches WHERE league_id = $1 AND season = $2 AND external_match_id IS NOT NULL"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("aggregation_ledger").
		Columns("league_id", "ledger_key").
		Values("4689", "event:m1:0").
		Values("4689", "event:m1:1").
		Suffix("ON CONFLICT DO NOTHING RETURNING ledger_key").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO aggregation_ledger (league_id, ledger_key) VALUES ($1, $2), ($3, $4) ON CONFLICT DO NOTHING RETURNING ledger_key"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 || args[3] != "event:m1:1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RejectsShortRow(t *testing.T) {
	_, _, err := InsertInto("matches").Columns("a", "b").Values("only-one").ToSQL()
	if err == nil {
		t.Fatalf("expected error for mismatched row length")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("matches").
		Set("external_match_id", "998877").
		SetExpr("updated_at", "NOW()").
		Where(Eq("public_id", "4689-2042")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE matches SET external_match_id = $1, updated_at = NOW() WHERE public_id = $2"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "998877" || args[1] != "4689-2042" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestExprPlaceholders(t *testing.T) {
	query, args, err := Select("id").
		From("matches").
		Where(Eq("league_id", "4689"), Expr("match_date BETWEEN ? AND ?", "2025-04-11", "2025-04-13")).
		ToSQL()
	if err != nil {
		t.Fatalf("build query: %v", err)
	}
	if !strings.HasSuffix(query, "match_date BETWEEN $2 AND $3") {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 3 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type statsRow struct {
	Key     string `db:"player_key"`
	Goals   int    `db:"goals"`
	ignored string
	Skip    string `db:"-"`
}

func TestInsertModels(t *testing.T) {
	query, args, err := InsertModels("player_season_stats", []any{
		statsRow{Key: "id:1", Goals: 2},
		&statsRow{Key: "id:2", Goals: 1},
	}, "ON CONFLICT (player_key) DO UPDATE SET goals = player_season_stats.goals + EXCLUDED.goals")
	if err != nil {
		t.Fatalf("build insert models: %v", err)
	}

	wantPrefix := "INSERT INTO player_season_stats (player_key, goals) VALUES ($1, $2), ($3, $4) ON CONFLICT"
	if !strings.HasPrefix(query, wantPrefix) {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 4 || args[2] != "id:2" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertModel_RejectsNonStruct(t *testing.T) {
	if _, _, err := InsertModel("t", 42, ""); err == nil {
		t.Fatalf("expected error for non-struct model")
	}
	var nilRow *statsRow
	if _, _, err := InsertModel("t", nilRow, ""); err == nil {
		t.Fatalf("expected error for nil model")
	}
}
