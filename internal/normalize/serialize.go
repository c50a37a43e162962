package normalize

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizedArtifact is the final canonical output: UTF-8 bytes with a
// leading byte-order mark, LF line terminators, comma delimiters, minimal
// quoting, and the SHA-256 digest of exactly those bytes.
type NormalizedArtifact struct {
	Bytes    []byte
	SHA256   string // lower-case hex
	Encoding string // always TargetEncoding
}

// Serialize re-emits a table as canonical CSV bytes and hashes them. Every
// row, the last included, is LF-terminated. Output depends only on the
// table contents, so identical tables always produce identical bytes and
// digest.
func Serialize(table Table) NormalizedArtifact {
	var buf bytes.Buffer
	buf.Write(bomUTF8)
	for _, row := range table.Rows {
		for i, f := range row.Fields {
			if i > 0 {
				buf.WriteByte(byte(TargetDelimiter))
			}
			writeField(&buf, f)
		}
		buf.WriteByte('\n')
	}

	sum := sha256.Sum256(buf.Bytes())
	return NormalizedArtifact{
		Bytes:    buf.Bytes(),
		SHA256:   hex.EncodeToString(sum[:]),
		Encoding: TargetEncoding,
	}
}

// writeField emits one field with minimal quoting: the field is quoted only
// when it contains a comma, a double quote, or a line break, and embedded
// quotes are doubled.
func writeField(buf *bytes.Buffer, field string) {
	if !strings.ContainsAny(field, ",\"\n\r") {
		buf.WriteString(field)
		return
	}
	buf.WriteByte('"')
	for i := 0; i < len(field); i++ {
		if field[i] == '"' {
			buf.WriteByte('"')
		}
		buf.WriteByte(field[i])
	}
	buf.WriteByte('"')
}
