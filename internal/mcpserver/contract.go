package mcpserver

// NamingContract describes how attachments are named, ordered, and
// re-referenced. LLM consumers should read it before calling
// organize_attachments.
const NamingContract = `# Attachment Naming Contract

The organizer assigns every image attachment a sequential name of the form
` + "`" + `<prefix><N><ext>` + "`" + ` (e.g. ` + "`" + `T0.png` + "`" + `, ` + "`" + `T1.jpg` + "`" + `) and keeps Markdown references
pointing at the moved files.

## Naming

1. The counter seeds from the highest index already present in the
   attachment folder: with ` + "`" + `T0.png` + "`" + ` and ` + "`" + `T2.jpg` + "`" + ` on disk, the next name is
   ` + "`" + `T3` + "`" + `. An empty folder starts at 0.
2. A bare ` + "`" + `T.png` + "`" + ` counts as index 0.
3. Matching is exact and case-sensitive on the prefix; only direct children
   of the folder count, not files in sub-folders.
4. Each file keeps its own extension. Files already carrying a
   ` + "`" + `<prefix><N>` + "`" + ` name are left alone.
5. If the assigned name is taken by a file outside the collection, the
   index skips forward until a free one is found.

## Ordering

Candidates are renamed oldest-first: file creation time, then modification
time, then natural filename order (` + "`" + `img2` + "`" + ` before ` + "`" + `img10` + "`" + `).

## References

After a move, wikilinks (` + "`" + `![[old.png]]` + "`" + `, ` + "`" + `[[old.png|alias]]` + "`" + `) and Markdown
images (` + "`" + `![alt](old.png)` + "`" + `) are rewritten to the new name. Aliases and
` + "`" + `#` + "`" + ` subpaths are preserved. Text inside code fences and inline code is
never touched. The rewrite scope is ` + "`" + `vault` + "`" + ` (every referencing note, found
via the link index) or ` + "`" + `note` + "`" + ` (only the targeted note).

## Scope

- Default: images directly inside the attachment folder.
- ` + "`" + `note_path` + "`" + `: only images referenced by that note, wherever they live.
- ` + "`" + `scoop_vault_root` + "`" + `: additionally collect images lying in the vault root.
`
