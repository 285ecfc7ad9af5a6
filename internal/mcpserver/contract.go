package mcpserver

// FrontmatterContract describes the post format that authoring tools should
// follow when creating posts.
const FrontmatterContract = `# Quire Post Contract

Every post is a Markdown (.md) or MDX (.mdx) file under the content directory.

## Structure

` + "```" + `markdown
---
title: Human-readable title      # REQUIRED
date: 2025-01-15                 # REQUIRED - YYYY-MM-DD or RFC 3339
description: One-line summary    # OPTIONAL - used in listings and previews
author: Jane Doe                 # OPTIONAL
tags:                            # OPTIONAL - YAML list of display labels
  - Go
  - Static Sites
draft: false                     # OPTIONAL - drafts are never published
series: building-quire           # OPTIONAL - groups posts into a series
seriesPart: 1                    # OPTIONAL - position in the series, >= 1
---

Body text in standard Markdown (GitHub-flavored, footnotes allowed).
` + "```" + `

## Rules

1. **Front-matter is mandatory.** The ` + "`---`" + ` fence (YAML) or ` + "`+++`" + ` fence (TOML)
   must be the first thing in the file.
2. **` + "`title`" + ` and ` + "`date`" + ` are required.** A post missing either fails the build.
3. **Slugs come from the path.** ` + "`2024/hello.md`" + ` is published at ` + "`/blog/2024/hello`" + `;
   ` + "`guide/index.mdx`" + ` is published at ` + "`/blog/guide`" + `. Two files must never map to
   the same slug.
4. **Tags are labels.** Write them the way they should be displayed. They are matched
   case-insensitively and without accents or punctuation, so ` + "`Go`" + ` and ` + "`go `" + ` are the
   same tag. A tag made only of symbols is ignored.
5. **Preview images are generated.** Every post gets ` + "`/og/blog/<slug>/image.png`" + `; do not
   add one by hand.
6. **Encoding** is UTF-8 with a trailing newline.
`
