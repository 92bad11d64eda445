package mcpserver

// NoteFormatContract describes the notes file format for LLM consumers
// that create or read notes.
const NoteFormatContract = `# notes.txt Note Format

Notes live in plain UTF-8 text files named ` + "`notes.<machine>.txt`" + `. Each machine
writes its own file; files of other machines in the same folder are merged in.

## Records

A file is a sequence of records. A record starts with a delimiter line made of
` + "`----`" + ` followed by the header; the body runs until the next delimiter line.

` + "```" + `text
---- id:3f2a..., c:2024-01-31 09:00:00, m:2024-02-01 18:30:12
! call the bank #todo #money
Ask about the mortgage offer.
` + "```" + `

- ` + "`id`" + ` never changes once assigned.
- ` + "`c`" + ` is the creation time, ` + "`m`" + ` the last modification time
  (` + "`YYYY-MM-DD HH:MM:SS`" + `). When the same id appears in several files the
  copy with the latest ` + "`m`" + ` wins.
- A body line starting with ` + "`----`" + ` is stored with a leading space.

## Text conventions

1. **Title** is the first non-blank line.
2. **Kind prefix**: the first word of the title may be one of
   ` + "`% %% %%% ! !! !!! ? ?? ???`" + ` (note, task, idea; more characters means higher
   priority) or ` + "`.`" + ` for a hidden note. Without a prefix the note is a plain ` + "`%`" + ` note.
3. **Tags** are words starting with ` + "`#`" + `, at least two letters or digits after it
   (` + "`#work`" + `, ` + "`#q3`" + `). Tags are case-insensitive.

## Selections

A selection string filters notes: an optional leading prefix, then tags and
words that must all be present. ` + "`! #work`" + ` lists work tasks by priority,
` + "`#`" + ` alone lists untagged notes, ` + "`.`" + ` lists hidden notes.
`
