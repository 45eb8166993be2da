package parser

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	stderrors "errors" // Standard errors package

	"github.com/mcncl/datamorph/internal/errors" // Custom errors package
	"github.com/mcncl/datamorph/internal/models"
)

// Parse reads all of reader and converts it into a models.Value.
// The whole document is held in memory.
func Parse(reader io.Reader) (models.Value, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return models.Value{}, errors.NewInputError("failed to read input", err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a single JSON document, keeping object members in
// source order.
func ParseBytes(data []byte) (models.Value, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return models.Value{}, errors.NewInputError("input is empty or contains only whitespace", errors.ErrEmptyInput)
	}

	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber() // Numbers keep their source text

	root, err := decodeValue(decoder)
	if err != nil {
		return models.Value{}, classifyError(data, err)
	}

	// Only whitespace may follow the root value.
	if _, err := decoder.Token(); !stderrors.Is(err, io.EOF) {
		if err != nil {
			return models.Value{}, errors.NewParsingError("invalid trailing data after first JSON value", classifyError(data, err))
		}
		return models.Value{}, errors.NewParsingError("multiple JSON values found at the root", errors.ErrMultipleJSON)
	}

	return root, nil
}

// ParseString parses JSON from a string
func ParseString(jsonString string) (models.Value, error) {
	if strings.TrimSpace(jsonString) == "" {
		return models.Value{}, errors.NewInputError("input string is empty or consists only of whitespace", errors.ErrEmptyInput)
	}
	return ParseBytes([]byte(jsonString))
}

// ParseFile parses JSON from a file path
func ParseFile(filePath string) (models.Value, error) {
	if strings.TrimSpace(filePath) == "" {
		return models.Value{}, errors.NewInputError("file path is empty", errors.ErrInvalidFilePath)
	}
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Value{}, errors.NewInputError(
				fmt.Sprintf("file '%s' not found", filePath),
				errors.ErrFileNotFound,
			)
		}
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to open file '%s'", filePath),
			err,
		)
	}
	defer func() {
		if err := file.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing file: %v\n", err)
		}
	}()

	stat, err := file.Stat()
	if err != nil {
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("failed to get file stats for '%s'", filePath),
			err,
		)
	}
	if stat.IsDir() {
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("'%s' is a directory", filePath),
			errors.ErrInvalidFilePath,
		)
	}
	if stat.Size() == 0 {
		return models.Value{}, errors.NewInputError(
			fmt.Sprintf("input file '%s' is empty", filePath),
			errors.ErrFileEmpty,
		)
	}

	return Parse(file)
}

func decodeValue(dec *json.Decoder) (models.Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return models.Value{}, err
	}

	switch t := tok.(type) {
	case json.Delim:
		switch t {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		default:
			return models.Value{}, fmt.Errorf("unexpected delimiter %q", rune(t))
		}
	case bool:
		return models.Bool(t), nil
	case json.Number:
		return models.Number(t), nil
	case string:
		return models.String(t), nil
	case nil:
		return models.Null(), nil
	default:
		return models.Value{}, fmt.Errorf("unexpected json token type: %T", t)
	}
}

// decodeObject reads members after the opening brace. A repeated key keeps
// its first position and takes the last value.
func decodeObject(dec *json.Decoder) (models.Value, error) {
	var obj models.Object
	seen := make(map[string]int)

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return models.Value{}, unexpectedEOF(err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return models.Value{}, fmt.Errorf("object key has type %T, want string", keyTok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return models.Value{}, unexpectedEOF(err)
		}
		if idx, dup := seen[key]; dup {
			obj[idx].Value = val
			continue
		}
		seen[key] = len(obj)
		obj = append(obj, models.Member{Key: key, Value: val})
	}

	if err := expectDelim(dec, '}'); err != nil {
		return models.Value{}, err
	}
	return models.Value{Kind: models.KindObject, Object: obj}, nil
}

func decodeArray(dec *json.Decoder) (models.Value, error) {
	items := []models.Value{}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return models.Value{}, unexpectedEOF(err)
		}
		items = append(items, val)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return models.Value{}, err
	}
	return models.Value{Kind: models.KindArray, Array: items}, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return unexpectedEOF(err)
	}
	if tok != want {
		return fmt.Errorf("expected %q, got %v", rune(want), tok)
	}
	return nil
}

// unexpectedEOF turns an EOF inside an unfinished value into io.ErrUnexpectedEOF.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

func classifyError(data []byte, err error) error {
	var syntaxError *json.SyntaxError
	switch {
	case stderrors.As(err, &syntaxError):
		line, col := position(data, syntaxError.Offset)
		return errors.NewParsingError(
			fmt.Sprintf("JSON syntax error at line %d, column %d (offset %d): %s", line, col, syntaxError.Offset, syntaxError.Error()),
			errors.ErrInvalidJSON,
		)
	case stderrors.Is(err, io.ErrUnexpectedEOF), stderrors.Is(err, io.EOF):
		return errors.NewParsingError("unexpected end of JSON input", errors.ErrInvalidJSON)
	default:
		return errors.NewParsingError(fmt.Sprintf("failed to decode JSON: %v", err), errors.ErrInvalidJSON)
	}
}

// position converts a byte offset into a 1-based line and column.
func position(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset < 0 {
		offset = 0
	}
	prefix := data[:offset]
	line := bytes.Count(prefix, []byte{'\n'}) + 1
	col := int(offset) - (bytes.LastIndexByte(prefix, '\n') + 1)
	if col < 1 {
		col = 1
	}
	return line, col
}
