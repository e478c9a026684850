package syntax

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

// DefaultLanguage is used when neither configuration nor file extension
// names a grammar.
const DefaultLanguage = "python"

// javaClassBody holds class members: methods, fields, constructors and
// nested types.
var javaClassBody = harness{
	prefix: "class __ExactSrc {\n",
	suffix: "\n}\n",
	body:   "class_body",
}

var grammars = []*Grammar{
	newPython(),
	newRuby(),
	newTypeScript(),
	newC(),
	newJava(),
	newPHP(),
	newRust(),
}

func newPython() *Grammar {
	return &Grammar{
		Name:        "python",
		Extensions:  []string{".py", ".pyi"},
		language:    sitter.NewLanguage(python.Language()),
		transparent: set("expression_statement", "parenthesized_expression"),
		ignored:     set("comment"),
		statementSuffixes: []string{
			"_statement",
			"_definition",
		},
		expressions: set(
			"identifier", "call", "attribute", "subscript",
			"integer", "float", "string", "concatenated_string",
			"true", "false", "none", "ellipsis",
			"list", "tuple", "dictionary", "set",
			"lambda", "await",
		),
		expressionSuffixes: []string{
			"_expression",
			"_operator",
			"_comprehension",
		},
	}
}

func newRuby() *Grammar {
	return &Grammar{
		Name:        "ruby",
		Extensions:  []string{".rb"},
		language:    sitter.NewLanguage(ruby.Language()),
		transparent: set("parenthesized_statements"),
		ignored:     set("comment"),
		statements: set(
			"method", "singleton_method", "class", "singleton_class", "module",
			"if", "unless", "while", "until", "for", "case", "begin",
			"return", "break", "next",
		),
		statementSuffixes: []string{"_modifier"},
		expressions: set(
			"identifier", "constant", "call", "binary", "unary",
			"integer", "float", "string", "simple_symbol", "symbol",
			"true", "false", "nil", "self",
			"array", "hash", "lambda", "range", "conditional",
			"element_reference", "instance_variable", "scope_resolution",
		),
	}
}

func newTypeScript() *Grammar {
	return &Grammar{
		Name:       "typescript",
		Extensions: []string{".ts", ".mts", ".cts"},
		language:   sitter.NewLanguage(typescript.LanguageTypescript()),
		contexts: map[string]harness{
			"class_body": {
				prefix: "class __ExactSrc {\n",
				suffix: "\n}\n",
				body:   "class_body",
			},
		},
		transparent: set("expression_statement", "parenthesized_expression"),
		ignored:     set("comment", "empty_statement"),
		statementSuffixes: []string{
			"_statement",
			"_declaration",
		},
		expressions: set(
			"identifier", "property_identifier", "this",
			"number", "string", "template_string", "regex",
			"true", "false", "null", "undefined",
			"array", "object", "arrow_function",
		),
		expressionSuffixes: []string{"_expression"},
	}
}

func newC() *Grammar {
	return &Grammar{
		Name:       "c",
		Extensions: []string{".c", ".h"},
		language:   sitter.NewLanguage(c.Language()),
		harness: harness{
			prefix:     "void __exactsrc(void) {\n",
			suffix:     "\n}\n",
			terminator: ";",
			body:       "compound_statement",
		},
		contexts: map[string]harness{
			"translation_unit": {},
			"field_declaration_list": {
				prefix: "struct __exactsrc {\n",
				suffix: "\n};\n",
				body:   "field_declaration_list",
			},
		},
		transparent: set("expression_statement", "parenthesized_expression"),
		ignored:     set("comment"),
		statements:  set("declaration", "type_definition"),
		statementSuffixes: []string{
			"_statement",
		},
		expressions: set(
			"identifier", "number_literal", "string_literal", "char_literal",
			"concatenated_string", "true", "false", "null",
		),
		expressionSuffixes: []string{"_expression"},
	}
}

func newJava() *Grammar {
	return &Grammar{
		Name:       "java",
		Extensions: []string{".java"},
		language:   sitter.NewLanguage(java.Language()),
		harness: harness{
			prefix:     "class __ExactSrc {\nvoid __exactsrc() {\n",
			suffix:     "\n}\n}\n",
			terminator: ";",
			body:       "block",
		},
		contexts: map[string]harness{
			"program":                {},
			"class_body":             javaClassBody,
			"enum_body_declarations": javaClassBody,
			"interface_body": {
				prefix: "interface __ExactSrc {\n",
				suffix: "\n}\n",
				body:   "interface_body",
			},
		},
		transparent: set("expression_statement", "parenthesized_expression"),
		ignored:     set("line_comment", "block_comment", "empty_statement"),
		statementSuffixes: []string{
			"_statement",
			"_declaration",
		},
		expressions: set(
			"identifier", "this", "method_invocation", "field_access", "array_access",
			"decimal_integer_literal", "decimal_floating_point_literal",
			"string_literal", "character_literal", "true", "false", "null_literal",
		),
		expressionSuffixes: []string{"_expression"},
	}
}

func newPHP() *Grammar {
	return &Grammar{
		Name:       "php",
		Extensions: []string{".php"},
		language:   sitter.NewLanguage(php.LanguagePHP()),
		harness: harness{
			prefix:     "<?php\n",
			terminator: ";",
		},
		contexts: map[string]harness{
			"declaration_list": {
				prefix: "<?php\nclass __ExactSrc {\n",
				suffix: "\n}\n",
				body:   "declaration_list",
			},
		},
		transparent: set("expression_statement", "parenthesized_expression"),
		ignored:     set("comment", "php_tag", "empty_statement"),
		statementSuffixes: []string{
			"_statement",
			"_declaration",
			"_definition",
		},
		expressions: set(
			"variable_name", "name", "integer", "float", "string", "encapsed_string",
			"boolean", "null",
		),
		expressionSuffixes: []string{"_expression"},
	}
}

func newRust() *Grammar {
	return &Grammar{
		Name:       "rust",
		Extensions: []string{".rs"},
		language:   sitter.NewLanguage(rust.Language()),
		harness: harness{
			prefix: "fn __exactsrc() {\n",
			suffix: "\n}\n",
			body:   "block",
		},
		contexts: map[string]harness{
			"source_file": {},
			"declaration_list": {
				prefix: "impl __ExactSrc {\n",
				suffix: "\n}\n",
				body:   "declaration_list",
			},
			"field_declaration_list": {
				prefix: "struct __ExactSrc {\n",
				suffix: "\n}\n",
				body:   "field_declaration_list",
			},
		},
		transparent: set("expression_statement", "parenthesized_expression"),
		ignored:     set("line_comment", "block_comment", "empty_statement"),
		statementSuffixes: []string{
			"_statement",
			"_declaration",
			"_item",
		},
		expressions: set("identifier", "self", "macro_invocation"),
		expressionSuffixes: []string{
			"_expression",
			"_literal",
		},
	}
}
