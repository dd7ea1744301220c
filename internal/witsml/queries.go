package witsml

// GetLogByUid selects one log.
func GetLogByUid(wellUid, wellboreUid, logUid string) Query {
	return Query{ObjectType: ObjectTypeLog, UidWell: wellUid, UidWellbore: wellboreUid, Uid: logUid}
}

// GetObjectByUid selects one object of any type.
func GetObjectByUid(objectType ObjectType, wellUid, wellboreUid, uid string) Query {
	return Query{ObjectType: objectType, UidWell: wellUid, UidWellbore: wellboreUid, Uid: uid}
}

// GetLogData selects the given curves of one log between two inclusive bounds.
func GetLogData(wellUid, wellboreUid, logUid string, mnemonics []string, startIndex, endIndex string) Query {
	return Query{
		ObjectType:  ObjectTypeLog,
		UidWell:     wellUid,
		UidWellbore: wellboreUid,
		Uid:         logUid,
		Mnemonics:   append([]string(nil), mnemonics...),
		StartIndex:  startIndex,
		EndIndex:    endIndex,
	}
}

// DeleteObject addresses one whole object for deletion.
func DeleteObject(objectType ObjectType, wellUid, wellboreUid, uid string) Document {
	return Document{
		ObjectType: objectType,
		Object:     ObjectOnWellbore{UidWell: wellUid, UidWellbore: wellboreUid, Uid: uid},
	}
}

// DeleteObjects builds one delete document per uid sharing the same parent wellbore.
func DeleteObjects(objectType ObjectType, wellUid, wellboreUid string, uids []string) []Document {
	docs := make([]Document, 0, len(uids))
	for _, uid := range uids {
		docs = append(docs, DeleteObject(objectType, wellUid, wellboreUid, uid))
	}
	return docs
}

// DeleteMnemonics removes the named curves and their data from one log.
func DeleteMnemonics(wellUid, wellboreUid, logUid string, mnemonics []string) Document {
	curves := make([]LogCurveInfo, 0, len(mnemonics))
	for _, m := range mnemonics {
		curves = append(curves, LogCurveInfo{Uid: m, Mnemonic: m})
	}
	return Document{
		ObjectType: ObjectTypeLog,
		Log: &Log{
			ObjectOnWellbore: ObjectOnWellbore{UidWell: wellUid, UidWellbore: wellboreUid, Uid: logUid},
			LogCurveInfo:     curves,
		},
	}
}

// CreateLog builds an add document for a log header placed under a new parent wellbore.
// Data and index ranges are dropped; the store derives them from the rows it receives.
func CreateLog(source Log, wellUid, wellboreUid, nameWell, nameWellbore string) Document {
	target := source.HeaderOnly()
	target.UidWell = wellUid
	target.UidWellbore = wellboreUid
	target.NameWell = nameWell
	target.NameWellbore = nameWellbore
	target.StartIndex = nil
	target.EndIndex = nil
	target.StartDateTimeIndex = ""
	target.EndDateTimeIndex = ""
	for i := range target.LogCurveInfo {
		target.LogCurveInfo[i].MinIndex = ""
		target.LogCurveInfo[i].MaxIndex = ""
		target.LogCurveInfo[i].MinDateTimeIndex = ""
		target.LogCurveInfo[i].MaxDateTimeIndex = ""
	}
	return Document{ObjectType: ObjectTypeLog, Log: &target}
}

// UpdateLogCurves adds curve descriptions to an existing log.
func UpdateLogCurves(wellUid, wellboreUid, logUid string, curves []LogCurveInfo) Document {
	return Document{
		ObjectType: ObjectTypeLog,
		Log: &Log{
			ObjectOnWellbore: ObjectOnWellbore{UidWell: wellUid, UidWellbore: wellboreUid, Uid: logUid},
			LogCurveInfo:     append([]LogCurveInfo(nil), curves...),
		},
	}
}

// UpdateLogData appends or overwrites rows of an existing log.
func UpdateLogData(wellUid, wellboreUid, logUid string, data LogData) Document {
	return Document{
		ObjectType: ObjectTypeLog,
		Log: &Log{
			ObjectOnWellbore: ObjectOnWellbore{UidWell: wellUid, UidWellbore: wellboreUid, Uid: logUid},
			LogData:          &data,
		},
	}
}

// UpdateWbGeometrySection replaces or adds one section of a wellbore geometry.
func UpdateWbGeometrySection(wellUid, wellboreUid, wbGeometryUid string, section WbGeometrySection) Document {
	return Document{
		ObjectType: ObjectTypeWbGeometry,
		WbGeometry: &WbGeometry{
			ObjectOnWellbore: ObjectOnWellbore{UidWell: wellUid, UidWellbore: wellboreUid, Uid: wbGeometryUid},
			Sections:         []WbGeometrySection{section},
		},
	}
}
