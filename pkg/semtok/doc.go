/*
Package semtok provides semantic token support for ledger documents.

Pipeline:
--------

	  +------------+
	  | syntax     |   Provider.Tree(uri)
	  | Tree       |
	  +------------+
	         |
	  pre-order walk + RuleTable
	         |
	         v
	  +------------+
	  | Tokens     |   filtered by the negotiated Legend
	  +------------+
	         |
	  EncodeData / DiffData against Cache
	         |
	         v
	  full stream | delta edits

Legend:
------
The legend is fixed per session at initialize time. Categories and modifiers
keep the server's canonical order and are narrowed to what the client
declared, so the index of a category on the wire is its index in the
negotiated legend, not in the full enumeration.

Wire encoding:
-------------
Each token is five integers (deltaLine, deltaStartChar, length, category,
modifiers). deltaStartChar is relative to the previous token only when both
are on the same line. Columns and lengths are UTF-16 code units whenever the
document text is known.

Deltas:
------
Every full or delta response gets a fresh result id and replaces the cached
stream for its document. A delta against any other id falls back to a full
stream.
*/
package semtok
