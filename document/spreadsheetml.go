package document

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"shipmentgen/pipeline"
)

// Headers of the Data sheet, in column order. The TMS import template
// spells "Desription" without the c; the mapping sheet refers to the
// header verbatim, so the misspelling is load-bearing.
var dataHeaders = []string{
	"Type", "Shipment Number", "Shipment Desription", "Commodity", "Priority",
	"OriginLocation", "DestinationLocation", "PickupFrom", "PickupTo",
	"DeliveryFrom", "DeliveryTo", "Carrier", "Service", "ReferenceNumberType",
	"ReferenceNumber", "Quantity", "Weight", "Hectolitros", "Bultos", "Pallets",
}

// Writer renders the shipment order document as SpreadsheetML, the XML
// dialect the TMS bulk importer consumes.
type Writer struct {
	PlanID string
	now    func() time.Time
}

func NewWriter(planID string) *Writer {
	return &Writer{PlanID: planID, now: time.Now}
}

// WriteFile renders the document to path.
func (d *Writer) WriteFile(path string, records []pipeline.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}
	if err := d.Write(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Write renders the three-sheet workbook: Data with the record rows,
// Info with the API envelope, Mapping binding columns and constants to
// the shipment-create API fields.
func (d *Writer) Write(w io.Writer, records []pipeline.Record) error {
	b := bufio.NewWriter(w)

	fmt.Fprint(b, "<?xml version=\"1.0\"?>\n")
	fmt.Fprint(b, "<?mso-application progid=\"Excel.Sheet\"?>\n")
	fmt.Fprint(b, "<Workbook xmlns=\"urn:schemas-microsoft-com:office:spreadsheet\"\n")
	fmt.Fprint(b, " xmlns:o=\"urn:schemas-microsoft-com:office:office\"\n")
	fmt.Fprint(b, " xmlns:x=\"urn:schemas-microsoft-com:office:excel\"\n")
	fmt.Fprint(b, " xmlns:ss=\"urn:schemas-microsoft-com:office:spreadsheet\"\n")
	fmt.Fprint(b, " xmlns:html=\"http://www.w3.org/TR/REC-html40\">\n")

	fmt.Fprint(b, " <DocumentProperties xmlns=\"urn:schemas-microsoft-com:office:office\">\n")
	fmt.Fprint(b, "  <Author>Shipment Order Generator</Author>\n")
	fmt.Fprint(b, "  <LastAuthor>Shipment Order Generator</LastAuthor>\n")
	fmt.Fprintf(b, "  <Created>%sZ</Created>\n", d.now().Format("2006-01-02T15:04:05"))
	fmt.Fprint(b, "  <Version>16.00</Version>\n")
	fmt.Fprint(b, " </DocumentProperties>\n")

	fmt.Fprint(b, " <OfficeDocumentSettings xmlns=\"urn:schemas-microsoft-com:office:office\">\n")
	fmt.Fprint(b, "  <AllowPNG/>\n")
	fmt.Fprint(b, " </OfficeDocumentSettings>\n")

	fmt.Fprint(b, " <ExcelWorkbook xmlns=\"urn:schemas-microsoft-com:office:excel\">\n")
	fmt.Fprint(b, "  <WindowHeight>20745</WindowHeight>\n")
	fmt.Fprint(b, "  <WindowWidth>32767</WindowWidth>\n")
	fmt.Fprint(b, "  <WindowTopX>32767</WindowTopX>\n")
	fmt.Fprint(b, "  <WindowTopY>32767</WindowTopY>\n")
	fmt.Fprint(b, "  <ProtectStructure>False</ProtectStructure>\n")
	fmt.Fprint(b, "  <ProtectWindows>False</ProtectWindows>\n")
	fmt.Fprint(b, " </ExcelWorkbook>\n")

	fmt.Fprint(b, " <Styles>\n")
	fmt.Fprint(b, "  <Style ss:ID=\"Default\" ss:Name=\"Normal\">\n")
	fmt.Fprint(b, "   <Alignment ss:Vertical=\"Bottom\"/>\n")
	fmt.Fprint(b, "   <Borders/>\n")
	fmt.Fprint(b, "   <Font ss:FontName=\"Calibri\" x:Family=\"Swiss\" ss:Size=\"11\" ss:Color=\"#000000\"/>\n")
	fmt.Fprint(b, "   <Interior/>\n")
	fmt.Fprint(b, "   <NumberFormat/>\n")
	fmt.Fprint(b, "   <Protection/>\n")
	fmt.Fprint(b, "  </Style>\n")
	fmt.Fprint(b, " </Styles>\n")

	d.writeDataSheet(b, records)
	d.writeInfoSheet(b)
	d.writeMappingSheet(b)

	fmt.Fprint(b, "</Workbook>\n")
	return b.Flush()
}

func (d *Writer) writeDataSheet(b *bufio.Writer, records []pipeline.Record) {
	fmt.Fprint(b, " <Worksheet ss:Name=\"Data\">\n")
	fmt.Fprintf(b, "  <Table ss:ExpandedColumnCount=\"20\" ss:ExpandedRowCount=\"%d\" "+
		"x:FullColumns=\"1\" x:FullRows=\"1\" "+
		"ss:DefaultColumnWidth=\"49.5\" ss:DefaultRowHeight=\"15\">\n", len(records)+1)

	fmt.Fprint(b, "   <Row>\n")
	for _, h := range dataHeaders {
		fmt.Fprintf(b, "    <Cell><Data ss:Type=\"String\">%s</Data></Cell>\n", escape(h))
	}
	fmt.Fprint(b, "   </Row>\n")

	for _, rec := range records {
		fmt.Fprint(b, "   <Row>\n")
		writeStringCell(b, rec.Type)
		writeStringCell(b, rec.ShipmentNumber)
		writeStringCell(b, rec.Description)
		writeStringCell(b, rec.Commodity)
		writePriorityCell(b, rec.Priority)
		writeStringCell(b, rec.Origin)
		writeStringCell(b, rec.Destination)
		writeDateCell(b, rec.PickupFrom)
		writeDateCell(b, rec.PickupTo)
		writeDateCell(b, rec.DeliveryFrom)
		writeDateCell(b, rec.DeliveryTo)
		writeStringCell(b, rec.Carrier)
		writeStringCell(b, rec.Service)
		writeStringCell(b, rec.RefType)
		writeStringCell(b, rec.RefNumber)
		writeIntCell(b, rec.Quantity)
		writeFloatCell(b, rec.Weight)
		writeFloatCell(b, rec.Hectoliters)
		writeIntCell(b, rec.Bultos)
		writeStringCell(b, rec.Pallets)
		fmt.Fprint(b, "   </Row>\n")
	}

	fmt.Fprint(b, "  </Table>\n")
	fmt.Fprint(b, " </Worksheet>\n")
}

func (d *Writer) writeInfoSheet(b *bufio.Writer) {
	fmt.Fprint(b, " <Worksheet ss:Name=\"Info\">\n")
	fmt.Fprint(b, "  <Table ss:ExpandedColumnCount=\"3\" ss:ExpandedRowCount=\"6\" "+
		"x:FullColumns=\"1\" x:FullRows=\"1\" ss:DefaultColumnWidth=\"56.25\" ss:DefaultRowHeight=\"15\">\n")

	rows := [][3]string{
		{"Version", "2", ""},
		{"APIRequest", "processShipmentOrderCreate", ""},
		{"Timestamp", "yyyy-MM-dd HH:mm", ""},
		{"Date", "yyyy-MM-dd", ""},
		{"Time", "HH:mm", ""},
		{"", "", "All cells should be formatted to 'text'"},
	}
	for _, row := range rows {
		fmt.Fprint(b, "   <Row>\n")
		for _, v := range row {
			writeStringCell(b, v)
		}
		fmt.Fprint(b, "   </Row>\n")
	}

	fmt.Fprint(b, "  </Table>\n")
	fmt.Fprint(b, " </Worksheet>\n")
}

func (d *Writer) writeMappingSheet(b *bufio.Writer) {
	planID := d.PlanID
	if planID == "" {
		planID = "5001"
	}

	fmt.Fprint(b, " <Worksheet ss:Name=\"Mapping\">\n")
	fmt.Fprint(b, "  <Table ss:ExpandedColumnCount=\"3\" ss:ExpandedRowCount=\"50\" "+
		"x:FullColumns=\"1\" x:FullRows=\"1\" ss:DefaultColumnWidth=\"56.25\" ss:DefaultRowHeight=\"15\">\n")

	rows := [][3]string{
		{"Map Type", "Map Value", "API Field"},
		{"COLUMN", "Type", "#RowType"},
		{"COLUMN", "Shipment Number", "Shipment.ShipmentNumber"},
		{"COLUMN", "Priority", "Shipment.ShipmentPriority"},
		{"CONSTANT", "BOL_ABI", "Shipment.CustomerCode"},
		{"CONSTANT", "BOL", "Shipment.LogisticsGroupCode"},
		{"CONSTANT", "AMBV", "Shipment.DivisionCode"},
		{"CONSTANT", "BOL", "Shipment.ProfitCenterCode"},
		{"CONSTANT", planID, "Shipment.SystemPlanID"},
		{"COLUMN", "Shipment Desription", "Shipment.ShipmentDescription"},
		{"CONSTANT", "SUM-BOL", "Shipment.ShipmentEntryVersionCode"},
		{"CONSTANT", "BA", "Shipment.ShipmentEntryTypeCode"},
		{"CONSTANT", "FT_PRE_PAID", "Shipment.FreightTermsEnumVal"},
		{"CONSTANT", "FALSE", "Shipment.UrgentFlag"},
		{"COLUMN", "Commodity", "Shipment.CommodityCode"},
		{"CONSTANT", "SFT_HUB", "Shipment.ShipFromLocationTypeEnumVal"},
		{"COLUMN", "OriginLocation", "Shipment.ShipFromLocationCode"},
		{"CONSTANT", "STT_HUB", "Shipment.ShipToLocationTypeEnumVal"},
		{"COLUMN", "DestinationLocation", "Shipment.ShipToLocationCode"},
		{"COLUMN", "PickupFrom", "Shipment.PickupFromDateTime"},
		{"COLUMN", "PickupTo", "Shipment.PickupToDateTime"},
		{"COLUMN", "DeliveryFrom", "Shipment.DeliveryFromDateTime"},
		{"COLUMN", "DeliveryTo", "Shipment.DeliveryToDateTime"},
		{"CONSTANT", "true", "Shipment.UseOriginDefaultsFlag"},
		{"CONSTANT", "true", "Shipment.UseDestinationDefaultsFlag"},
		{"CONSTANT", "false", "Shipment.IgnoreReferenceNumbersFlag"},
		{"CONSTANT", "false", "Shipment.IgnoreContainersFlag"},
		{"CONSTANT", "true", "Shipment.IgnoreChargeOverridesFlag"},
		{"COLUMN", "ReferenceNumber", "Shipment.ReferenceNumberStructure.ReferenceNumber"},
		{"COLUMN", "ReferenceNumberType", "Shipment.ReferenceNumberStructure.ReferenceNumberTypeCode"},
		{"CONSTANT", "PLL", "Shipment.Container.ContainerTypeCode"},
		{"COLUMN", "Quantity", "Shipment.Container.Quantity"},
		{"CONSTANT", "true", "Shipment.Container.IgnoreContainerOrientationsFlag"},
		{"CONSTANT", "false", "Shipment.Container.IgnoreWeightByFreightClassFlag"},
		{"CONSTANT", "true", "Shipment.Container.IgnoreShipmentItemsFlag"},
		{"CONSTANT", "true", "Shipment.Container.IgnoreReferenceNumbersFlag"},
		{"COLUMN", "Weight", "Shipment.Container.WeightByFreightClass.FreightClassNominalWeight"},
		{"CONSTANT", "*FAK", "Shipment.Container.WeightByFreightClass.FreightClassCode"},
		{"CONSTANT", "true", "Shipment.DeferAPRatingFlag"},
		{"CONSTANT", "true", "Shipment.DeferARRatingFlag"},
		{"CONSTANT", "false", "ExecuteAPRatingFlag"},
		{"CONSTANT", "false", "ExecuteARRatingFlag"},
		{"CONSTANT", "false", "IgnoreAllShipmentReferenceNumbersFlag"},
		{"COLUMN", "Hectolitros", "Shipment.Container.ContainerShippingInformation.FlexibleQuantity1"},
		{"COLUMN", "Bultos", "Shipment.Container.ContainerShippingInformation.FlexibleQuantity2"},
		{"COLUMN", "Carrier", "Shipment.PreferredAPCarrierCode"},
		{"COLUMN", "Service", "Shipment.PreferredAPServiceCode"},
		{"CONSTANT", "false", "Shipment.Container.Is3DLoadingRequiredFlag"},
		{"COLUMN", "Pallets", "Shipment.Container.ContainerShippingInformation.FlexibleQuantity3"},
	}
	for _, row := range rows {
		fmt.Fprint(b, "   <Row>\n")
		for _, v := range row {
			writeStringCell(b, v)
		}
		fmt.Fprint(b, "   </Row>\n")
	}

	fmt.Fprint(b, "  </Table>\n")
	fmt.Fprint(b, " </Worksheet>\n")
}

func writeStringCell(b *bufio.Writer, v string) {
	fmt.Fprintf(b, "    <Cell><Data ss:Type=\"String\">%s</Data></Cell>\n", escape(v))
}

// Priority is always imported as a number; a missing value renders as a
// blank text cell like every other absent field.
func writePriorityCell(b *bufio.Writer, v *int64) {
	if v == nil {
		writeStringCell(b, "")
		return
	}
	fmt.Fprintf(b, "    <Cell><Data ss:Type=\"Number\">%d</Data></Cell>\n", *v)
}

func writeIntCell(b *bufio.Writer, v *int64) {
	if v == nil {
		writeStringCell(b, "")
		return
	}
	fmt.Fprintf(b, "    <Cell><Data ss:Type=\"Number\">%d</Data></Cell>\n", *v)
}

func writeFloatCell(b *bufio.Writer, v *float64) {
	if v == nil {
		writeStringCell(b, "")
		return
	}
	fmt.Fprintf(b, "    <Cell><Data ss:Type=\"Number\">%s</Data></Cell>\n", strconv.FormatFloat(*v, 'f', -1, 64))
}

// Date cells carry the Ticked marker so the importer treats the text as
// a literal timestamp instead of re-parsing it.
func writeDateCell(b *bufio.Writer, v string) {
	if v == "" {
		writeStringCell(b, "")
		return
	}
	fmt.Fprintf(b, "    <Cell><Data ss:Type=\"String\" x:Ticked=\"1\">%s</Data></Cell>\n", escape(v))
}

var escaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
)

func escape(s string) string {
	return escaper.Replace(s)
}
