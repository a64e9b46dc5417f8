package hir

import (
	"testing"

	"github.com/nyejames/beanstalk-sub005/internal/ids"
	"github.com/nyejames/beanstalk-sub005/internal/place"
)

// TestSimplifyCFGTrivialJump covers a trivial-jump block in the middle of a
// chain: bb0 (assigns, jumps to 1) -> bb1 (empty jump to 2) -> bb2 (return).
// bb1 should be collapsed and bb0's jump retargeted straight to bb2.
func TestSimplifyCFGTrivialJump(t *testing.T) {
	f := &Func{
		Entry: 0,
		Blocks: []Block{
			{
				ID: 0,
				Statements: []Stmt{
					{Kind: StmtAssign, AssignPlace: place.Local(0, ids.NoTypeId), AssignExpr: NoExprID},
				},
				Terminator: Terminator{Kind: TermJump, JumpTarget: 1},
			},
			{
				ID:         1,
				Terminator: Terminator{Kind: TermJump, JumpTarget: 2},
			},
			{
				ID:         2,
				Terminator: Terminator{Kind: TermReturn, ReturnExpr: NoExprID},
			},
		},
	}

	SimplifyCFG(f)

	if len(f.Blocks) != 2 {
		t.Fatalf("expected trivial block 1 to be pruned, got %d blocks", len(f.Blocks))
	}
	if f.Blocks[0].Terminator.JumpTarget != 1 {
		t.Fatalf("expected bb0's jump retargeted to the renumbered return block, got %d", f.Blocks[0].Terminator.JumpTarget)
	}
	if f.Blocks[1].Terminator.Kind != TermReturn {
		t.Fatalf("expected block 1 after compaction to be the return block, got kind %d", f.Blocks[1].Terminator.Kind)
	}
}

// TestSimplifyCFGUnreachableBlock confirms a block no path from the entry
// can reach is dropped and the survivors renumbered.
func TestSimplifyCFGUnreachableBlock(t *testing.T) {
	f := &Func{
		Entry: 0,
		Blocks: []Block{
			{ID: 0, Terminator: Terminator{Kind: TermReturn, ReturnExpr: NoExprID}},
			{ID: 1, Terminator: Terminator{Kind: TermJump, JumpTarget: 0}}, // unreachable
		},
	}

	SimplifyCFG(f)

	if len(f.Blocks) != 1 {
		t.Fatalf("expected unreachable block 1 to be pruned, got %d blocks", len(f.Blocks))
	}
	if f.Entry != 0 {
		t.Fatalf("expected entry to remain 0, got %d", f.Entry)
	}
}

// TestSimplifyCFGPreservesJumpArgs confirms a jump that carries a JumpArg is
// never treated as trivial, since collapsing it would silently drop the
// value assignment flowing into its target.
func TestSimplifyCFGPreservesJumpArgs(t *testing.T) {
	f := &Func{
		Entry: 0,
		Blocks: []Block{
			{
				ID:         0,
				Terminator: Terminator{Kind: TermJump, JumpTarget: 1, JumpArgs: []JumpArg{{Target: 5, Value: 0}}},
			},
			{
				ID:         1,
				Terminator: Terminator{Kind: TermReturn, ReturnExpr: NoExprID},
			},
		},
	}

	SimplifyCFG(f)

	if len(f.Blocks) != 2 {
		t.Fatalf("expected both blocks to survive (bb0 is not trivial), got %d", len(f.Blocks))
	}
	if len(f.Blocks[0].Terminator.JumpArgs) != 1 {
		t.Fatalf("expected JumpArgs to be preserved, got %d", len(f.Blocks[0].Terminator.JumpArgs))
	}
}
