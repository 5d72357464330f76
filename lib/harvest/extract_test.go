package harvest

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func extract(t *testing.T, html string, opts ExtractOptions) map[string]string {
	fields, err := ExtractFields(context.Background(), html, opts)
	require.NoError(t, err)
	return fields
}

func TestExtractDefinitionPairs(t *testing.T) {
	fields := extract(t, `
		<dl>
			<dt>Role</dt><dd>Engineer</dd>
			<dt>Team</dt><dd>Platform</dd><dd>Tools</dd>
		</dl>`, ExtractOptions{})

	require.Equal(t, "Engineer", fields["Role"])
	require.Equal(t, "Platform | Tools", fields["Team"])
}

func TestExtractTableRows(t *testing.T) {
	fields := extract(t, `
		<table>
			<tr><th>Name</th><td>Tanaka</td></tr>
			<tr><td>Contact</td><td>x@example.com</td><td>123-4567</td></tr>
			<tr><td>lonely</td></tr>
		</table>`, ExtractOptions{})

	require.Equal(t, "Tanaka", fields["Name"])
	require.Equal(t, "x@example.com | 123-4567", fields["Contact"])
	require.NotContains(t, fields, "lonely")
}

func TestExtractLabeledControls(t *testing.T) {
	fields := extract(t, `
		<form>
			<label for="dept">Department</label>
			<select id="dept">
				<option>Sales</option>
				<option selected>Support</option>
			</select>

			<label>Nickname</label>
			<input type="text" value="Tama">

			<div><label>Note</label><p><textarea>remember me</textarea></p></div>
		</form>`, ExtractOptions{})

	require.Equal(t, "Support", fields["Department"])
	require.Equal(t, "Tama", fields["Nickname"])
	require.Equal(t, "remember me", fields["Note"])
}

func TestExtractSelectWithoutExplicitSelection(t *testing.T) {
	fields := extract(t, `
		<label for="pref">Prefecture</label>
		<select id="pref"><option>Tokyo</option><option>Osaka</option></select>`,
		ExtractOptions{})

	require.Equal(t, "Tokyo", fields["Prefecture"])
}

func TestExtractEmphasisMarkers(t *testing.T) {
	fields := extract(t, `
		<p><b>所属：</b>開発部 <span>第二課</span></p>
		<p><strong>Status:</strong> active</p>
		<p><em>no colon here</em> ignored</p>`, ExtractOptions{})

	require.Equal(t, "開発部 第二課", fields["所属"])
	require.Equal(t, "active", fields["Status"])
	require.Len(t, fields, 2)
}

func TestExtractFirstWriteWins(t *testing.T) {
	// the definition list writes first; the table's duplicate keys
	// lose, and its empty Role value cannot displace a non-empty one
	fields := extract(t, `
		<dl>
			<dt>Role</dt><dd>FromList</dd>
			<dt>Office</dt><dd>Shibuya</dd>
		</dl>
		<table>
			<tr><td>Role</td><td></td></tr>
			<tr><td>Office</td><td>Ignored</td></tr>
		</table>`, ExtractOptions{})

	require.Equal(t, "FromList", fields["Role"])
	require.Equal(t, "Shibuya", fields["Office"])
}

func TestExtractColonKeysMergeWithBareKeys(t *testing.T) {
	fields := extract(t, `
		<table><tr><td>Phone:</td><td>111</td></tr></table>
		<p><b>Phone：</b>222</p>`, ExtractOptions{})

	require.Equal(t, "111", fields["Phone"])
	require.NotContains(t, fields, "Phone:")
	require.NotContains(t, fields, "Phone：")
}

func TestExtractComposite(t *testing.T) {
	opts := ExtractOptions{
		GroupField:     "Group",
		MemberField:    "Member",
		CompositeField: "Entry",
	}

	fields := extract(t, `
		<dl><dt>Group</dt><dd>Alpha</dd><dt>Member</dt><dd>Tanaka</dd></dl>`, opts)
	require.Equal(t, "[Alpha] Tanaka", fields["Entry"])

	fields = extract(t, `
		<dl><dt>Member</dt><dd>Tanaka</dd></dl>`, opts)
	require.Equal(t, "Tanaka", fields["Entry"])

	fields = extract(t, `<dl><dt>Other</dt><dd>x</dd></dl>`, opts)
	require.NotContains(t, fields, "Entry")
}

func TestExtractNormalizesValues(t *testing.T) {
	fields := extract(t, "<dl><dt> Name </dt><dd> Suzuki\n\tIchiro </dd></dl>", ExtractOptions{})
	require.Equal(t, "Suzuki Ichiro", fields["Name"])
}

func TestExtractAllStrategiesTogether(t *testing.T) {
	fields := extract(t, `
		<section>
			<dl><dt>Name</dt><dd>Chess Club</dd></dl>
			<table><tr><th>Advisor</th><td>Ms. Tan</td></tr></table>
			<label for="day">Meets</label>
			<select id="day"><option selected>Friday</option><option>Monday</option></select>
			<p><b>Room:</b> 204</p>
		</section>`, ExtractOptions{})

	diff := cmp.Diff(
		map[string]string{
			"Name":    "Chess Club",
			"Advisor": "Ms. Tan",
			"Meets":   "Friday",
			"Room":    "204",
		},
		fields,
	)
	if diff != "" {
		t.Fatal(diff)
	}
}

func TestExtractNothing(t *testing.T) {
	fields := extract(t, `<div><p>free text only</p></div>`, ExtractOptions{})
	require.Empty(t, fields)
}
