package testdata

// FeatureIOSStationary is a track line as posted by the iOS client.
// It reports a Speed of -1 when speed is unknown.
var FeatureIOSStationary = `{"id":0,"type":"Feature","geometry":{"type":"Point","coordinates":[-93.2554931640625,44.98896789550781]},"properties":{"Accuracy":23.13,"Activity":"Unknown","Alias":"rye","Elevation":328.43,"Heading":-1,"Name":"Rye16","Speed":-1,"Time":"2024-12-23T15:31:56.728Z","UUID":"5D37B5EA-6E0B-41FE-8A72-2BB681D661DA","UnixTime":1734967916,"Version":"V.customizableCatTrackHat"}}`

// FeatureAndroidStationary is a track line as posted by the Android client.
// Its Pressure is a JSON null.
var FeatureAndroidStationary = `{"id":0,"type":"Feature","bbox":[-113.4730765,47.1787276,-113.4730765,47.1787276],"geometry":{"type":"Point","coordinates":[-113.4730765,47.1787276]},"properties":{"Accuracy":3.9,"Activity":"Stationary","ActivityConfidence":100,"BatteryLevel":1,"Elevation":1258.4,"Heading":-1,"Name":"ranga-moto-act3","Pressure":null,"Speed":0.06,"Time":"2024-12-23T15:05:34.710Z","UUID":"76170e959f967f40","UnixTime":1734966334,"Version":"gcps/v0.0.0+4","vAccuracy":1}}`

// FeatureNoUnixTime has only an RFC3339 Time property.
var FeatureNoUnixTime = `{"type":"Feature","geometry":{"type":"Point","coordinates":[-111.6902967,45.5710024]},"properties":{"Accuracy":4.9,"Elevation":1463.6,"Name":"ia","Speed":0.45,"Time":"2024-02-04T18:04:31.172Z"}}`

// SampleGPX is a small GPX 1.0 document with two segments, one point
// carrying extensions and one missing elevation.
var SampleGPX = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.0" creator="test" xmlns="http://www.topografix.com/GPX/1/0">
  <trk>
    <name>Sample</name>
    <trkseg>
      <trkpt lat="39.9600" lon="116.3580">
        <ele>50.5</ele>
        <time>2024-05-01T08:00:00Z</time>
      </trkpt>
      <trkpt lat="39.9601" lon="116.3581">
        <ele>51</ele>
        <time>2024-05-01T08:01:00Z</time>
        <extensions>
          <speed>1.5</speed>
          <hdop>4</hdop>
        </extensions>
      </trkpt>
    </trkseg>
    <trkseg>
      <trkpt lat="39.9700" lon="116.3700">
        <time>2024-05-01 08:30:00</time>
      </trkpt>
    </trkseg>
  </trk>
</gpx>
`

// SampleCSV is a backup export in the tabular row format, deliberately out of order,
// with one row in epoch milliseconds.
var SampleCSV = `dataTime,longitude,latitude,altitude,speed,accuracy
1714550460,116.3581,39.9601,51,1.5,4
1714550400,116.3580,39.9600,50.5,0,
1714552200000,116.3700,39.9700,,,
`
