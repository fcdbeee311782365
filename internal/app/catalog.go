package app

// knownTables is the fixed table catalog of the monitoring schema.
var knownTables = [...]string{
	"dbo.TBL_Charts",
	"dbo.TBL_Location_temp",
	"dbo.TBL_Locations",
	"dbo.TBL_Medium",
	"dbo.TBL_Organization",
	"dbo.TBL_Parameter",
	"dbo.TBL_Project",
	"dbo.TBL_Qualifiers",
	"dbo.TBL_Reporting_Limit",
	"dbo.TBL_Result_Remarks",
	"dbo.TBL_Results",
	"dbo.TBL_Sample",
	"dbo.TBL_Sample_Type",
	"dbo.TBL_Version",
}

// KnownTables returns the table catalog. The slice is a fresh copy.
func KnownTables() []string {
	out := make([]string, len(knownTables))
	copy(out, knownTables[:])
	return out
}
