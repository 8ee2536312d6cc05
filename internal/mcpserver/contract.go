package mcpserver

// LedgerFormat describes the task-ledger conventions so that LLM clients
// edit the current document in a way the processor understands.
const LedgerFormat = `# notesman ledger format

The current document is Markdown with optional YAML front matter and three
task sections. Only the markers below are interpreted; everything else is
kept as written.

` + "```" + `markdown
---
title: Work
date: "2024-01-15"        # rewritten to the run date on every run
---

## ACTIVE
- [ ] . write the report   # touched: journaled, mark removed, item stays
- [x] send invoices        # complete: moved to the archive
- [ ] plan next week       # untouched: left alone

## BACKLOG
- [x] retire old script    # complete: moved to the archive
- some idea                # left alone

## DONE
- [x] migrated database    # complete: moved to the archive
` + "```" + `

## Rules

1. Section headers start with ` + "`## `" + `. ` + "`## ACTIVE`, `## BACKLOG`, `## DONE`" + ` are
   task sections; any other ` + "`## `" + ` header ends the current task section.
2. ` + "`] . `" + ` (checkbox followed by the touch mark) journals an ACTIVE item.
   The journal line carries a ` + "`[YYYY-MM-DD, hh:mmam]`" + ` stamp.
3. ` + "`- [x] `" + ` archives an item in any task section. Archived lines are removed
   from the current document.
4. Only ACTIVE items are journaled. BACKLOG and DONE items are only archived
   when complete.
5. Journal and archive files hold the newest entries first under a
   regenerated ` + "`+++`" + ` header. Do not edit that header by hand.
6. Every rewrite leaves a hidden ` + "`.<name>.bak`" + ` copy of the previous version.
`
