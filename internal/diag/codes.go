package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Синтаксические: нарушения подмножества хост-языка
	SynInfo                  Code = 2000
	SynUnrecognizedConstruct Code = 2001
	SynStmtAfterReturn       Code = 2002
	SynReturnForbidden       Code = 2003
	SynBranchReturnMismatch  Code = 2004
	SynBranchAssignMismatch  Code = 2005
	SynDestructuringAssign   Code = 2006
	SynMultiTargetAssign     Code = 2007
	SynVarargs               Code = 2008
	SynKeywordOnlyParam      Code = 2009
	SynDefaultParam          Code = 2010
	SynDecorator             Code = 2011
	SynKeywordArgument       Code = 2012
	SynChainedComparison     Code = 2013
	SynComprehensionShape    Code = 2014
	SynFreeVariable          Code = 2015
	SynMissingReturn         Code = 2016
	SynHostParse             Code = 2017
	SynUnsupported           Code = 2018
	SynNoDefinition          Code = 2019

	// I/O
	IOLoadFileError Code = 4001

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var ( // todo расширить описания и использовать как notes
	codeDescription = map[Code]string{
		UnknownCode:              "Unknown error",
		SynInfo:                  "Syntax information",
		SynUnrecognizedConstruct: "Unrecognized syntax construct",
		SynStmtAfterReturn:       "Statement after return",
		SynReturnForbidden:       "Return is not allowed here",
		SynBranchReturnMismatch:  "Branches disagree on return",
		SynBranchAssignMismatch:  "Branches assign different variables",
		SynDestructuringAssign:   "Deconstructing assignment",
		SynMultiTargetAssign:     "Multi-target assignment",
		SynVarargs:               "Variadic parameters",
		SynKeywordOnlyParam:      "Keyword-only parameters",
		SynDefaultParam:          "Default parameter values",
		SynDecorator:             "Decorator on nested definition",
		SynKeywordArgument:       "Keyword argument at call site",
		SynChainedComparison:     "Chained comparison",
		SynComprehensionShape:    "Unsupported comprehension shape",
		SynFreeVariable:          "Free variable in named function",
		SynMissingReturn:         "Missing return",
		SynHostParse:             "Host parser error",
		SynUnsupported:           "Unsupported construct",
		SynNoDefinition:          "No function definition",
		IOLoadFileError:          "I/O load file error",
		ObsInfo:                  "Observability information",
		ObsTimings:               "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
