package schema

// Built-in resource types.
const (
	TypeDocType          = "docType"
	TypeAuditRule        = "auditRule"
	TypeRegulation       = "regulation"
	TypeRegulationClause = "regulationClause"
	TypeReviewItem       = "reviewItem"
)

var builtinPrefixes = map[string]string{
	TypeDocType:          "DT",
	TypeAuditRule:        "AR",
	TypeRegulation:       "RG",
	TypeRegulationClause: "RC",
	TypeReviewItem:       "RI",
}

func codeColumn() Column {
	return Column{Header: "Code", Field: "code", Transform: "upper", Aliases: []string{"编码", "代码", "编号"}}
}

func statusColumn() Column {
	return Column{Header: "Status", Field: "status", Transform: "status", Format: "status_label", Aliases: []string{"状态"}}
}

var builtinSchemas = []ResourceSchema{
	{
		ResourceType:       TypeDocType,
		CodeField:          "code",
		Pattern:            PatternPrimary,
		PrimaryUniqueKey:   []string{"code"},
		SecondaryUniqueKey: []string{"name"},
		SheetName:          "DocTypes",
		Columns: []Column{
			codeColumn(),
			{Header: "Name", Field: "name", Required: true, Transform: "collapse_spaces", Aliases: []string{"名称", "文档类型"}},
			{Header: "Category", Field: "category", Transform: "trim", Aliases: []string{"分类", "类别"}},
			{Header: "Description", Field: "description", Aliases: []string{"描述", "说明"}},
			statusColumn(),
		},
	},
	{
		ResourceType:       TypeAuditRule,
		CodeField:          "code",
		Pattern:            PatternPrimary,
		PrimaryUniqueKey:   []string{"code"},
		SecondaryUniqueKey: []string{"name", "ruleType"},
		SheetName:          "AuditRules",
		Columns: []Column{
			codeColumn(),
			{Header: "Rule Name", Field: "name", Required: true, Transform: "collapse_spaces", Aliases: []string{"规则名称"}},
			{Header: "Rule Type", Field: "ruleType", Required: true, Transform: "lower", Aliases: []string{"规则类型"}},
			{Header: "Severity", Field: "severity", Transform: "lower", Aliases: []string{"严重程度", "等级"}},
			{Header: "Effective Date", Field: "effectiveDate", Transform: "date", Format: "date", Aliases: []string{"生效日期"}},
			{Header: "Description", Field: "description", Aliases: []string{"描述", "说明"}},
			statusColumn(),
		},
	},
	{
		ResourceType:       TypeRegulation,
		CodeField:          "code",
		Pattern:            PatternPrimary,
		PrimaryUniqueKey:   []string{"code"},
		SecondaryUniqueKey: []string{"documentNumber"},
		SheetName:          "Regulations",
		Columns: []Column{
			codeColumn(),
			{Header: "Title", Field: "title", Required: true, Transform: "collapse_spaces", Aliases: []string{"标题", "法规名称"}},
			{Header: "Issuer", Field: "issuer", Transform: "trim", Aliases: []string{"发布机关", "发文单位"}},
			{Header: "Document Number", Field: "documentNumber", Transform: "trim", Aliases: []string{"文号"}},
			{Header: "Issued On", Field: "issuedOn", Transform: "date", Format: "date", Aliases: []string{"发布日期"}},
			statusColumn(),
		},
	},
	{
		ResourceType:       TypeRegulationClause,
		CodeField:          "code",
		Pattern:            PatternChild,
		PrimaryUniqueKey:   []string{"code"},
		SecondaryUniqueKey: []string{"regulationCode", "clauseNumber"},
		ParentCodeField:    "regulationCode",
		SheetName:          "Clauses",
		Columns: []Column{
			{Header: "Regulation Code", Field: "regulationCode", Required: true, Transform: "upper", Aliases: []string{"法规编码"}},
			codeColumn(),
			{Header: "Clause Number", Field: "clauseNumber", Required: true, Transform: "trim", Aliases: []string{"条款号"}},
			{Header: "Content", Field: "content", Required: true, Aliases: []string{"条款内容", "内容"}},
			statusColumn(),
		},
	},
	{
		ResourceType:       TypeReviewItem,
		CodeField:          "code",
		Pattern:            PatternChild,
		PrimaryUniqueKey:   []string{"code"},
		SecondaryUniqueKey: []string{"auditRuleCode", "title"},
		ParentCodeField:    "auditRuleCode",
		SheetName:          "ReviewItems",
		Columns: []Column{
			{Header: "Audit Rule Code", Field: "auditRuleCode", Required: true, Transform: "upper", Aliases: []string{"规则编码"}},
			codeColumn(),
			{Header: "Title", Field: "title", Required: true, Transform: "collapse_spaces", Aliases: []string{"审查要点", "标题"}},
			{Header: "Mandatory", Field: "mandatory", Transform: "bool", Format: "bool_label", Aliases: []string{"是否必查"}},
			statusColumn(),
		},
	},
}

// DefaultRegistry returns a registry holding the built-in resource types.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for rt, prefix := range builtinPrefixes {
		if err := r.RegisterType(rt, prefix); err != nil {
			panic(err)
		}
	}
	for _, s := range builtinSchemas {
		if err := r.RegisterSchema(s); err != nil {
			panic(err)
		}
	}
	return r
}
