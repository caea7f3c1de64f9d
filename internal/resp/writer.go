package resp

import (
	"bytes"
	"strconv"
	"strings"
)

var crlf = []byte("\r\n")

// AppendSimpleString appends "+<s>\r\n" to dst.
func AppendSimpleString(dst []byte, s string) []byte {
	dst = append(dst, '+')
	dst = append(dst, s...)
	return append(dst, crlf...)
}

// AppendError appends "-<msg>\r\n" to dst.
func AppendError(dst []byte, msg string) []byte {
	dst = append(dst, '-')
	dst = append(dst, msg...)
	return append(dst, crlf...)
}

// AppendInteger appends ":<n>\r\n" to dst.
func AppendInteger(dst []byte, n int64) []byte {
	dst = append(dst, ':')
	dst = strconv.AppendInt(dst, n, 10)
	return append(dst, crlf...)
}

// AppendNullBulk appends the null bulk frame "$-1\r\n" to dst.
func AppendNullBulk(dst []byte) []byte {
	return append(dst, "$-1\r\n"...)
}

// AppendBulk appends "$<len>\r\n<b>\r\n" to dst. A nil b encodes as a
// null bulk.
func AppendBulk(dst, b []byte) []byte {
	if b == nil {
		return AppendNullBulk(dst)
	}
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(b)), 10)
	dst = append(dst, crlf...)
	dst = append(dst, b...)
	return append(dst, crlf...)
}

// AppendBulkString appends s as a bulk string frame.
func AppendBulkString(dst []byte, s string) []byte {
	dst = append(dst, '$')
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, crlf...)
	dst = append(dst, s...)
	return append(dst, crlf...)
}

// AppendArrayHeader appends "*<n>\r\n" to dst. The n element frames
// follow it.
func AppendArrayHeader(dst []byte, n int) []byte {
	dst = append(dst, '*')
	dst = strconv.AppendInt(dst, int64(n), 10)
	return append(dst, crlf...)
}

// NormalizeVerb uppercases an ASCII verb token. Tokens that are already
// uppercase skip the case conversion and are only copied into a string.
func NormalizeVerb(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	if bytes.ContainsAny(b, "abcdefghijklmnopqrstuvwxyz") {
		return strings.ToUpper(string(b))
	}
	return string(b)
}
